package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTag(t *testing.T) {
	tests := []struct {
		name  string
		block string
		tag   string
		want  string
	}{
		{
			name:  "simple",
			block: "<title>Hello</title>",
			tag:   "title",
			want:  "Hello",
		},
		{
			name:  "attributes and whitespace",
			block: `<title type="html">  Hello  </title>`,
			tag:   "title",
			want:  "Hello",
		},
		{
			name:  "case insensitive",
			block: "<TITLE>Loud</TITLE>",
			tag:   "title",
			want:  "Loud",
		},
		{
			name:  "spans lines",
			block: "<title>\n  first line\n  second line\n</title>",
			tag:   "title",
			want:  "first line\n  second line",
		},
		{
			name:  "first occurrence only",
			block: "<title>one</title><title>two</title>",
			tag:   "title",
			want:  "one",
		},
		{
			name:  "cdata unwrapped",
			block: "<title><![CDATA[ <b>Bold</b> & raw ]]></title>",
			tag:   "title",
			want:  "<b>Bold</b> & raw",
		},
		{
			name:  "cdata replaces surrounding text",
			block: "<title>before <![CDATA[inside]]> after</title>",
			tag:   "title",
			want:  "inside",
		},
		{
			name:  "namespaced tag",
			block: "<dc:date>2026-02-19</dc:date>",
			tag:   "dc:date",
			want:  "2026-02-19",
		},
		{
			name:  "absent tag",
			block: "<link>https://example.com</link>",
			tag:   "title",
			want:  "",
		},
		{
			name:  "unclosed tag",
			block: "<title>never closed",
			tag:   "title",
			want:  "",
		},
		{
			name:  "entities are not decoded",
			block: "<title>A &amp; B</title>",
			tag:   "title",
			want:  "A &amp; B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tag(tt.block, tt.tag)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tag() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no markup", input: "plain", want: "plain"},
		{name: "inline markup", input: "Docker <b>Desktop</b> Update", want: "Docker Desktop Update"},
		{name: "trims", input: "  <p>text</p>  ", want: "text"},
		{name: "only markup", input: "<br/><hr>", want: ""},
		{name: "entities kept", input: "<i>&lt;tag&gt;</i>", want: "&lt;tag&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, StripTags(tt.input)); diff != "" {
				t.Errorf("StripTags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
