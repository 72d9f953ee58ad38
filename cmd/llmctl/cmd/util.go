package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const defaultWidth = 80

// transcript prints a prompt and its completion as labelled blocks wrapped
// to the terminal width.
type transcript struct {
	width   int
	user    *color.Color
	model   *color.Color
	spinner *spinner.Spinner
}

func newTranscript() *transcript {
	width := defaultWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w
	}
	return &transcript{
		width: width,
		user:  color.New(color.FgHiBlue, color.Bold),
		model: color.New(color.FgHiGreen, color.Bold),
	}
}

// Prompt prints the user's prompt.
func (t *transcript) Prompt(text string) {
	t.block(t.user, "you", text)
}

// Reply prints the model's completion under its name.
func (t *transcript) Reply(name, text string) {
	t.block(t.model, name, text)
}

func (t *transcript) block(c *color.Color, label, text string) {
	fmt.Println()
	c.Printf("› %s\n", label)
	for _, line := range wrap(text, t.width-2) {
		fmt.Printf("%s %s\n", c.Sprint("│"), line)
	}
}

// Typing starts a spinner until Done is called.
func (t *transcript) Typing(name string) {
	t.spinner = spinner.New(spinner.CharSets[9], 150*time.Millisecond) // dots: ⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏
	t.spinner.Color("green", "bold")
	t.spinner.Suffix = fmt.Sprintf(" %s is typing...", name)
	t.spinner.Writer = os.Stderr
	t.spinner.Start()
}

// Done stops the spinner and clears its line.
func (t *transcript) Done() {
	if t.spinner == nil {
		return
	}
	t.spinner.Stop()
	t.spinner = nil
	fmt.Fprint(os.Stderr, "\r\033[K")
}

// wrap breaks text into lines of at most width runes. Newlines in text are
// kept, and words longer than width are split.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var line strings.Builder
		n := 0 // runes in line
		flush := func() {
			lines = append(lines, line.String())
			line.Reset()
			n = 0
		}

		for _, word := range strings.Fields(para) {
			for utf8.RuneCountInString(word) > width {
				if n > 0 {
					flush()
				}
				r := []rune(word)
				lines = append(lines, string(r[:width]))
				word = string(r[width:])
			}
			wn := utf8.RuneCountInString(word)
			if n > 0 && n+1+wn > width {
				flush()
			}
			if n > 0 {
				line.WriteByte(' ')
				n++
			}
			line.WriteString(word)
			n += wn
		}
		flush()
	}
	return lines
}
