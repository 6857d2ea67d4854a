// Where: internal/portal/form.go
// What: HTML form extraction helpers.
// Why: The portal is a server-rendered form app; submissions must echo its hidden fields.
package portal

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// htmlForm captures a parsed <form> element: its submission target and
// the initial values of every named control, hidden inputs included.
type htmlForm struct {
	Action string
	Method string
	Values url.Values
}

// parseForm reads an HTML document and extracts the form with the given
// id attribute.
func parseForm(r io.Reader, formID string) (*htmlForm, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	node := findElementByID(root, "form", formID)
	if node == nil {
		return nil, fmt.Errorf("form %q not found on page", formID)
	}

	form := &htmlForm{
		Action: attr(node, "action"),
		Method: strings.ToUpper(attr(node, "method")),
		Values: url.Values{},
	}
	if form.Method == "" {
		form.Method = "GET"
	}
	collectControls(node, form.Values)
	return form, nil
}

// collectControls walks a form subtree and records the initial value of
// each input, textarea, and select control.
func collectControls(node *html.Node, values url.Values) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			switch child.Data {
			case "input":
				name := attr(child, "name")
				if name == "" {
					break
				}
				inputType := strings.ToLower(attr(child, "type"))
				if inputType == "submit" || inputType == "button" || inputType == "image" {
					break
				}
				// Checkboxes and radios contribute a value only when checked.
				if inputType == "checkbox" || inputType == "radio" {
					if !hasAttr(child, "checked") {
						break
					}
				}
				values.Add(name, attr(child, "value"))
			case "textarea":
				if name := attr(child, "name"); name != "" {
					values.Add(name, textContent(child))
				}
			case "select":
				if name := attr(child, "name"); name != "" {
					if value, ok := selectedOption(child); ok {
						values.Add(name, value)
					}
				}
			}
		}
		collectControls(child, values)
	}
}

// selectedOption returns the value of the selected <option>, falling
// back to the first option, mirroring browser behavior.
func selectedOption(selectNode *html.Node) (string, bool) {
	var first string
	var haveFirst bool
	for child := selectNode.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "option" {
			continue
		}
		value := attr(child, "value")
		if value == "" {
			value = textContent(child)
		}
		if hasAttr(child, "selected") {
			return value, true
		}
		if !haveFirst {
			first = value
			haveFirst = true
		}
	}
	return first, haveFirst
}

// findElementByID locates the first element with the given tag and id.
func findElementByID(node *html.Node, tag, id string) *html.Node {
	if node.Type == html.ElementNode && node.Data == tag && attr(node, "id") == id {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElementByID(child, tag, id); found != nil {
			return found
		}
	}
	return nil
}

// errorListMessages extracts the text of every Django-style
// <ul class="errorlist"> item in a page.
func errorListMessages(r io.Reader) []string {
	root, err := html.Parse(r)
	if err != nil {
		return nil
	}
	var messages []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "ul" &&
			strings.Contains(attr(node, "class"), "errorlist") {
			for item := node.FirstChild; item != nil; item = item.NextSibling {
				if item.Type == html.ElementNode && item.Data == "li" {
					if text := strings.TrimSpace(textContent(item)); text != "" {
						messages = append(messages, text)
					}
				}
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return messages
}

func attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(node *html.Node, name string) bool {
	for _, a := range node.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func textContent(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}
