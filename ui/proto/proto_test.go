package proto

import (
	"strings"
	"testing"
)

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Detail", "Detail"},
		{"post-12-detail", "post-12-detail"},
		{"", `""`},
		{"sunt aut facere", `"sunt aut facere"`},
		{"quia et\nsuscipit", `"quia et\nsuscipit"`},
		{"tab\there", `"tab\there"`},
		{`back\slash`, `"back\\slash"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a=b", `"a=b"`},
	}
	for _, tt := range tests {
		if got := EscapeValue(tt.in); got != tt.want {
			t.Errorf("EscapeValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnescapeRoundtrip(t *testing.T) {
	values := []string{
		"", "Home", "loading...", "name: id labore ex et quam laborum",
		"email: Eliseo@gardner.biz", "line\nbreak", `"`, `\`, "日本 語",
	}
	for _, v := range values {
		esc := EscapeValue(v)
		if got := UnescapeValue(esc); got != v {
			t.Errorf("roundtrip(%q): escaped=%q unescaped=%q", v, esc, got)
		}
	}
}

func TestParseKV(t *testing.T) {
	k, v, ok := ParseKV(`text="Post: 7"`)
	if !ok || k != "text" || v != "Post: 7" {
		t.Errorf("ParseKV = (%q, %q, %v)", k, v, ok)
	}
	if _, _, ok := ParseKV("noequal"); ok {
		t.Error("ParseKV(noequal) ok = true")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"click id=home", []string{"click", "id=home"}},
		{`prop t1 text="hello world" fg=red`, []string{"prop", "t1", `text="hello world"`, "fg=red"}},
		{`prop t1 text="say \"hi there\""`, []string{"prop", "t1", `text="say \"hi there\""`}},
		{"  spaces  around  ", []string{"spaces", "around"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSerializeParseTree(t *testing.T) {
	tree := &Tree{
		Rev:  3,
		Root: "root",
		Nodes: map[string]*Node{
			"root": {ID: "root", Type: "vbox", Props: map[string]string{}, Children: []string{"home", "heading"}},
			"home": {ID: "home", Type: "button", Props: map[string]string{"text": "Home", "on": "list"}},
			"heading": {ID: "heading", Type: "text", Props: map[string]string{"text": "Post: 7"}},
		},
		Order: []string{"root", "home", "heading"},
	}

	text := SerializeTree(tree)
	for _, want := range []string{
		"rev 3\n",
		"root root\n",
		"node home button\n",
		"prop home on=list text=Home\n",
		`prop heading text="Post: 7"` + "\n",
		"child root heading\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("serialized tree missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "prop root") {
		t.Errorf("empty props written:\n%s", text)
	}

	parsed, err := ParseTree(text)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	if again := SerializeTree(parsed); again != text {
		t.Errorf("reserialized tree differs:\n%s\nvs\n%s", again, text)
	}
}

func TestParseTreeErrors(t *testing.T) {
	for _, in := range []string{"rev x", "node onlyid", "child parent"} {
		if _, err := ParseTree(in); err == nil {
			t.Errorf("ParseTree(%q) succeeded", in)
		}
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(`click id=post-3-detail on=detail post=3`)
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if a.Kind != "click" || a.Get("on") != "detail" || a.Get("post") != "3" {
		t.Errorf("action = %+v", a)
	}
	if got := SerializeAction(a); got != "click id=post-3-detail on=detail post=3" {
		t.Errorf("SerializeAction = %q", got)
	}
	if _, err := ParseAction("   "); err == nil {
		t.Error("ParseAction(blank) succeeded")
	}
	var nilAction *Action
	if nilAction.Get("id") != "" {
		t.Error("nil action Get returned a value")
	}
}

func TestClick(t *testing.T) {
	a := Click("row-0-detail", map[string]string{
		"text": "Detail", "focusable": "1", "style": "muted",
		"on": "detail", "post": "4", "id": "other",
	})
	if got, want := SerializeAction(a), "click id=row-0-detail on=detail post=4"; got != want {
		t.Errorf("Click = %q, want %q", got, want)
	}
	if got := SerializeAction(Click("x", nil)); got != "click id=x" {
		t.Errorf("Click(x, nil) = %q", got)
	}
}
