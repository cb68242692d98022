package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Script bodies shared by both drivers. Each is a function expression taking
// the XPath (and optionally an attribute name) and returning a JSON-friendly
// value, so null results never reach the driver's unmarshalling.
const (
	jsSnapshot = `function(xp) {
		var r = document.evaluate(xp, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		var out = [];
		for (var i = 0; i < r.snapshotLength; i++) out.push(r.snapshotItem(i));
		return out;
	}`

	scriptCount = `function(xp) {
		return (` + jsSnapshot + `)(xp).length;
	}`

	scriptAttribute = `function(xp, name) {
		var n = (` + jsSnapshot + `)(xp)[0];
		if (!n || !n.getAttribute) return {found: false, value: ""};
		var v = n.getAttribute(name);
		if (v === null) return {found: false, value: ""};
		if (name === "href" && n.href) v = n.href;
		return {found: true, value: v};
	}`

	scriptText = `function(xp) {
		var n = (` + jsSnapshot + `)(xp)[0];
		if (!n) return {found: false, value: ""};
		var t = (n.innerText !== undefined ? n.innerText : n.textContent) || "";
		return {found: true, value: t};
	}`

	scriptClickFirst = `function(xp) {
		var n = (` + jsSnapshot + `)(xp)[0];
		if (!n || !n.click) return false;
		n.click();
		return true;
	}`

	scriptClickAll = `function(xp) {
		var nodes = (` + jsSnapshot + `)(xp).reverse();
		var clicked = 0;
		for (var i = 0; i < nodes.length; i++) {
			if (nodes[i].click) { nodes[i].click(); clicked++; }
		}
		return clicked;
	}`

	scriptVisible = `function(xp) {
		var nodes = (` + jsSnapshot + `)(xp);
		for (var i = 0; i < nodes.length; i++) {
			var n = nodes[i];
			if (!n.getBoundingClientRect) continue;
			var r = n.getBoundingClientRect();
			var s = window.getComputedStyle(n);
			if (r.width > 0 && r.height > 0 && s.visibility !== "hidden" && s.display !== "none") return true;
		}
		return false;
	}`

	scriptScrollToBottom = `window.scrollTo(0, document.body.scrollHeight);`
)

// lookup is the decoded result of scriptAttribute and scriptText.
type lookup struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

func (l lookup) ptr(trim bool) *string {
	if !l.Found {
		return nil
	}
	v := l.Value
	if trim {
		v = strings.TrimSpace(v)
	}
	return &v
}

// invoke renders "(fn)(arg1, arg2, ...)" with JSON-encoded arguments.
func invoke(fn string, args ...string) string {
	encoded := make([]string, len(args))
	for i, a := range args {
		b, _ := json.Marshal(a)
		encoded[i] = string(b)
	}
	return fmt.Sprintf("(%s)(%s)", fn, strings.Join(encoded, ", "))
}
