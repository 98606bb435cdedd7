package opener

import (
	"errors"
	"reflect"
	"testing"
)

func TestSystem(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"linux", []string{"xdg-open", "https://example.com"}},
		{"freebsd", []string{"xdg-open", "https://example.com"}},
		{"darwin", []string{"open", "https://example.com"}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", "https://example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := System(tt.goos).Cmd("https://example.com").Args
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("args = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfiguredCommand(t *testing.T) {
	c, ok := New("firefox").(*Command)
	if !ok {
		t.Fatalf("expected *Command")
	}
	got := c.Cmd("https://example.com/a b").Args
	want := []string{"firefox", "https://example.com/a b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestCompoundCommandUsesShell(t *testing.T) {
	c := &Command{Shell: "open -a Firefox"}
	got := c.Cmd("https://example.com/?q=it's").Args
	want := []string{"sh", "-c", `open -a Firefox 'https://example.com/?q=it'\''s'`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestFunc(t *testing.T) {
	var got string
	o := Func(func(target string) error {
		got = target
		return nil
	})
	if err := o.Open("x"); err != nil || got != "x" {
		t.Fatalf("Func.Open: got %q err %v", got, err)
	}

	boom := errors.New("boom")
	if err := Func(func(string) error { return boom }).Open("x"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
