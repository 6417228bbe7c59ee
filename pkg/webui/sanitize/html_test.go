package sanitize_test

import (
	"testing"

	"github.com/inbucket/rcptcontact/pkg/webui/sanitize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLPassthrough(t *testing.T) {
	testStrings := []string{
		"",
		"plain string",
		"one &lt; two",
		"<div>Recipients</div><br/>",
		"<b>bold</b>",
		"<center>text</center>",
	}
	for _, ts := range testStrings {
		t.Run(ts, func(t *testing.T) {
			got, err := sanitize.HTML(ts)
			require.NoError(t, err)
			assert.Equal(t, ts, got)
		})
	}
}

func TestHTMLDropsInputs(t *testing.T) {
	got, err := sanitize.HTML(`<label for="x">L</label><input type="checkbox" name="x"/>`)
	require.NoError(t, err)
	assert.NotContains(t, got, "<input")
	assert.NotContains(t, got, "<label")
	assert.Contains(t, got, "L")
}

func TestFormKeepsInputs(t *testing.T) {
	input := `<label for="rcmfd_use_recipienttocontact">Use it</label>` +
		`<input type="checkbox" name="_use_recipienttocontact" id="rcmfd_use_recipienttocontact"` +
		` value="1" checked="checked" />`
	got, err := sanitize.Form(input)
	require.NoError(t, err)

	assert.Contains(t, got, `<label for="rcmfd_use_recipienttocontact">Use it</label>`)
	assert.Contains(t, got, `type="checkbox"`)
	assert.Contains(t, got, `name="_use_recipienttocontact"`)
	assert.Contains(t, got, `id="rcmfd_use_recipienttocontact"`)
	assert.Contains(t, got, `value="1"`)
	assert.Contains(t, got, `checked="checked"`)
}

func TestFormRejectsActiveContent(t *testing.T) {
	testCases := []struct {
		name, input, notWant string
	}{
		{"script", `<input type="checkbox" name="a"/><script>alert(1)</script>`, "script"},
		{"handler", `<input type="checkbox" name="a" onclick="alert(1)"/>`, "onclick"},
		{"submit", `<input type="submit" name="a"/>`, "submit"},
		{"image", `<input type="image" src="http://x/y.png"/>`, "image"},
		{"form", `<form action="http://evil"><input type="text" name="a"/></form>`, "evil"},
		{"button", `<button>Go</button>`, "<button"},
		{"fixed style", `<div style="position: fixed; top: 0">x</div>`, "position"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitize.Form(tc.input)
			require.NoError(t, err)
			assert.NotContains(t, got, tc.notWant)
		})
	}
}

// TestHTMLScriptTags tests some strings with JavaScript
func TestHTMLScriptTags(t *testing.T) {
	testCases := []struct {
		input, want string
	}{
		{
			`safe<script>nope</script>`,
			`safe`,
		},
		{
			`<a onblur="alert(something)" href="http://mysite.com">mysite</a>`,
			`<a href="http://mysite.com" rel="nofollow">mysite</a>`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := sanitize.HTML(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Got: %q, want: %q", got, tc.want)
			}
		})
	}
}

func TestSanitizeStyleTags(t *testing.T) {
	testCases := []struct {
		name, input, want string
	}{
		{
			"empty",
			``,
			``,
		},
		{
			"open",
			`<div>`,
			`<div>`,
		},
		{
			"open close",
			`<div></div>`,
			`<div></div>`,
		},
		{
			"inner text",
			`<div>foo bar</div>`,
			`<div>foo bar</div>`,
		},
		{
			"self close",
			`<br/>`,
			`<br/>`,
		},
		{
			"open params",
			`<div id="me">`,
			`<div id="me">`,
		},
		{
			"open params squote",
			`<div id="me" title='best'>`,
			`<div id="me" title="best">`,
		},
		{
			"open style",
			`<div id="me" style="color: red;">`,
			`<div id="me" style="color: red;">`,
		},
		{
			"open style squote",
			`<div id="me" style='color: red;'>`,
			`<div id="me" style="color: red;">`,
		},
		{
			"open style mixed case",
			`<div id="me" StYlE="color: red;">`,
			`<div id="me" style="color: red;">`,
		},
		{
			"closed style",
			`<br style="border: 1px solid red;"/>`,
			`<br style="border: 1px solid red;"/>`,
		},
		{
			"mixed case style",
			`<br StYlE="border: 1px solid red;"/>`,
			`<br style="border: 1px solid red;"/>`,
		},
		{
			"mixed case invalid style",
			`<br StYlE="position: fixed;"/>`,
			`<br/>`,
		},
		{
			"mixed",
			`<p id='i' title="cla'zz" style="font-size: 25px;"><b>some text</b></p>`,
			`<p id="i" title="cla&#39;zz" style="font-size: 25px;"><b>some text</b></p>`,
		},
		{
			"invalid styles",
			`<div id="me" style='position: absolute;'>`,
			`<div id="me">`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitize.HTML(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("input: %s\ngot : %s\nwant: %s", tc.input, got, tc.want)
			}
		})
	}
}
