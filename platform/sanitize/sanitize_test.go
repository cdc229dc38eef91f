package sanitize

import "testing"

func TestRichTextKeepsAllowedFormatting(t *testing.T) {
	got := RichText(`<p>Hello <b>world</b> <em>and</em> <u>you</u></p>`)
	want := `<p>Hello <b>world</b> <em>and</em> <u>you</u></p>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRichTextDropsScriptsWithContent(t *testing.T) {
	got := RichText(`<p>Hello <script>alert(1)</script><b>world</b></p>`)
	want := `<p>Hello <b>world</b></p>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRichTextStripsDisallowedTagsButKeepsText(t *testing.T) {
	got := RichText(`<a href="javascript:evil()">Data sheet</a><img src=x onerror=alert(1)>`)
	if got != "Data sheet" {
		t.Fatalf("expected plain text, got %q", got)
	}
}

func TestRichTextFiltersAttributesAndStyles(t *testing.T) {
	got := RichText(`<span class="note" style="text-decoration: underline; color: red" onclick="x()">u</span>`)
	want := `<span class="note" style="text-decoration: underline">u</span>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = RichText(`<p style="TEXT-ALIGN: Center">c</p>`)
	want = `<p style="text-align: center">c</p>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRichTextNormalizesLineBreaks(t *testing.T) {
	got := RichText("line<br>next<br/>end")
	want := "line<br />next<br />end"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRichTextEscapesText(t *testing.T) {
	got := RichText(`5 &lt; 6 &amp; <b>"ok"</b>`)
	want := `5 &lt; 6 &amp; <b>&#34;ok&#34;</b>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML(`<b>Tiles</b> &amp; Grout<script>x()</script>`)
	if got != "Tiles & Grout" {
		t.Fatalf("expected decoded text, got %q", got)
	}
}

func TestStripHTMLRemovesEncodedMarkup(t *testing.T) {
	got := Text(`Villa &lt;script&gt;alert(1)&lt;/script&gt;12 &lt;b&gt;East&lt;/b&gt;`)
	if got != "Villa 12 East" {
		t.Fatalf("expected encoded tags stripped, got %q", got)
	}
}

func TestStripHTMLDecodesEntitiesOnce(t *testing.T) {
	if got := Text(`5 &lt; 6 &amp;amp; more`); got != "5 < 6 &amp; more" {
		t.Fatalf("expected single decode, got %q", got)
	}
}
