package main

import "testing"

func TestParseVideoID(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: "dQw4w9WgXcQ"},
		{in: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/playlist?list=PL123", wantErr: true},
	}

	for _, tc := range cases {
		got, err := parseVideoID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseVideoID(%q) succeeded with %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseVideoID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseVideoID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
