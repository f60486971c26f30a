package uiautomator2

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/devicelab-dev/scrollseek/pkg/core"
)

// ParsedElement represents an element from page source XML.
type ParsedElement struct {
	Text        string
	ResourceID  string
	ContentDesc string
	ClassName   string
	Bounds      core.Bounds
	Enabled     bool
	Selected    bool
	Focused     bool
	Checked     bool
	Displayed   bool
	Clickable   bool
	Scrollable  bool
	Children    []*ParsedElement
	Depth       int    // depth in hierarchy
	Path        string // child indexes from the root, e.g. "0/2/1"
}

// ParsePageSource parses Android UI hierarchy XML into elements, in document order.
// Supports both formats:
// - UIAutomator dump: uses class name as element tag (e.g., <android.widget.FrameLayout>)
// - Appium format: uses <node> elements
func ParsePageSource(xmlData string) ([]*ParsedElement, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlData))

	var elements []*ParsedElement
	foundHierarchy := false
	var parseElement func() (*ParsedElement, error)

	parseElement = func() (*ParsedElement, error) {
		for {
			token, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			switch t := token.(type) {
			case xml.StartElement:
				if t.Name.Local == "hierarchy" {
					foundHierarchy = true
					continue
				}

				elem := &ParsedElement{
					ClassName: t.Name.Local,
					Displayed: true,
				}
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "text":
						elem.Text = attr.Value
					case "resource-id":
						elem.ResourceID = attr.Value
					case "content-desc":
						elem.ContentDesc = attr.Value
					case "class":
						elem.ClassName = attr.Value
					case "bounds":
						elem.Bounds = parseBounds(attr.Value)
					case "enabled":
						elem.Enabled = attr.Value == "true"
					case "selected":
						elem.Selected = attr.Value == "true"
					case "focused":
						elem.Focused = attr.Value == "true"
					case "checked":
						elem.Checked = attr.Value == "true"
					case "displayed":
						elem.Displayed = attr.Value != "false"
					case "clickable":
						elem.Clickable = attr.Value == "true"
					case "scrollable":
						elem.Scrollable = attr.Value == "true"
					}
				}

				for {
					child, err := parseElement()
					if err != nil {
						return elem, err
					}
					if child == nil {
						break
					}
					elem.Children = append(elem.Children, child)
				}
				return elem, nil

			case xml.EndElement:
				return nil, nil
			}
		}
	}

	var parseErr error
	for i := 0; ; {
		elem, err := parseElement()
		if elem != nil {
			elements = append(elements, flattenElement(elem, 0, strconv.Itoa(i))...)
			i++
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				parseErr = err
			}
			break
		}
	}

	if parseErr != nil {
		return nil, fmt.Errorf("parse page source: %w", parseErr)
	}
	if !foundHierarchy {
		return nil, fmt.Errorf("invalid page source: no hierarchy element found")
	}
	return elements, nil
}

// flattenElement flattens a tree of elements into a list, setting depth and path.
func flattenElement(elem *ParsedElement, depth int, path string) []*ParsedElement {
	elem.Depth = depth
	elem.Path = path
	result := []*ParsedElement{elem}
	for i, child := range elem.Children {
		result = append(result, flattenElement(child, depth+1, path+"/"+strconv.Itoa(i))...)
	}
	return result
}

// parseBounds parses Android bounds string "[x1,y1][x2,y2]" to Bounds.
func parseBounds(s string) core.Bounds {
	s = strings.ReplaceAll(s, "][", ",")
	s = strings.Trim(s, "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return core.Bounds{}
	}

	x1, _ := strconv.Atoi(parts[0])
	y1, _ := strconv.Atoi(parts[1])
	x2, _ := strconv.Atoi(parts[2])
	y2, _ := strconv.Atoi(parts[3])

	return core.Bounds{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// FilterScrollable returns only scrollable elements from the list.
func FilterScrollable(elements []*ParsedElement) []*ParsedElement {
	var result []*ParsedElement
	for _, elem := range elements {
		if elem.Scrollable && !elem.Bounds.Empty() {
			result = append(result, elem)
		}
	}
	return result
}

// FindLargestScrollable returns the scrollable element with the largest area.
// Returns nil if no scrollable elements are found.
func FindLargestScrollable(elements []*ParsedElement) *ParsedElement {
	var largest *ParsedElement
	for _, elem := range FilterScrollable(elements) {
		if largest == nil || elem.Bounds.Area() > largest.Bounds.Area() {
			largest = elem
		}
	}
	return largest
}

// FindByResourceID returns the first displayed element whose resource-id equals id or
// ends with ":id/"+id.
func FindByResourceID(elements []*ParsedElement, id string) *ParsedElement {
	for _, elem := range elements {
		if !elem.Displayed || elem.ResourceID == "" {
			continue
		}
		if elem.ResourceID == id || strings.HasSuffix(elem.ResourceID, ":id/"+id) {
			return elem
		}
	}
	return nil
}

// FindByPath returns the element at path.
func FindByPath(elements []*ParsedElement, path string) *ParsedElement {
	for _, elem := range elements {
		if elem.Path == path {
			return elem
		}
	}
	return nil
}

// labeled reports whether elem or any descendant carries text or a content-desc.
func labeled(elem *ParsedElement) bool {
	if elem.Text != "" || elem.ContentDesc != "" {
		return true
	}
	for _, c := range elem.Children {
		if labeled(c) {
			return true
		}
	}
	return false
}

// firstDescendant returns the first non-empty value of field in document order.
func firstDescendant(elem *ParsedElement, field func(*ParsedElement) string) string {
	for _, c := range elem.Children {
		if v := field(c); v != "" {
			return v
		}
		if v := firstDescendant(c, field); v != "" {
			return v
		}
	}
	return ""
}

// WindowItems returns the rendered items of a scrollable container in natural order.
//
// A direct child with its own label is one item. A label-less child grouping several
// labeled children (a month inside a calendar pager) is expanded into those children.
// Any other child is one item labeled by its first labeled descendant. Items with no
// on-screen area are dropped.
func WindowItems(container *ParsedElement) []core.ElementInfo {
	var items []core.ElementInfo
	var collect func(parent *ParsedElement)
	collect = func(parent *ParsedElement) {
		for _, child := range parent.Children {
			if !child.Displayed || child.Bounds.Empty() {
				continue
			}
			if child.Text == "" && child.ContentDesc == "" && labeledChildren(child) > 1 {
				collect(child)
				continue
			}
			items = append(items, toElementInfo(child))
		}
	}
	collect(container)
	return items
}

func labeledChildren(elem *ParsedElement) int {
	n := 0
	for _, c := range elem.Children {
		if labeled(c) {
			n++
		}
	}
	return n
}

// toElementInfo converts a parsed element, borrowing text and content-desc from the
// first descendant that has them.
func toElementInfo(elem *ParsedElement) core.ElementInfo {
	text := elem.Text
	if text == "" {
		text = firstDescendant(elem, func(e *ParsedElement) string { return e.Text })
	}
	desc := elem.ContentDesc
	if desc == "" {
		desc = firstDescendant(elem, func(e *ParsedElement) string { return e.ContentDesc })
	}
	info := core.ElementInfo{
		ID:                 elem.Path,
		Text:               text,
		Bounds:             elem.Bounds,
		Visible:            elem.Displayed,
		Enabled:            elem.Enabled,
		Focused:            elem.Focused,
		Checked:            elem.Checked,
		Selected:           elem.Selected,
		Class:              elem.ClassName,
		AccessibilityLabel: desc,
	}
	if elem.ResourceID != "" {
		info.Attributes = map[string]string{"resource-id": elem.ResourceID}
	}
	return info
}
