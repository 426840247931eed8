package output

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Indent prefixes every line of the text with the given number of spaces.
func Indent(spaces int, text string) string {
	prefix := strings.Repeat(" ", spaces)
	return prefix + strings.ReplaceAll(text, "\n", "\n"+prefix)
}

func Plural(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

func Filesize(i int) string {
	if i < 1024 {
		return fmt.Sprintf("%d bytes", i)
	}
	return fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(i)), i)
}
