package compose

import (
	"strconv"
	"strings"
)

// EntrySeparator closes every entry in the aggregate buffer.
const EntrySeparator = "  ----------------------"

// FormatEntry renders a snapshot into the text block appended to the
// aggregate buffer:
//
//	file: <fileId>
//	  notes: <note>
//	  code:
//	  <content>
//	  errors:
//	  Line <n>: <message>
//	  ----------------------
//
// followed by one blank line. The errors section is omitted when there are no
// errors. Content and messages are embedded verbatim, so text containing the
// separator collides visually with the entry boundary.
func FormatEntry(s Snapshot) string {
	var b strings.Builder
	b.Grow(len(s.FileID) + len(s.Note) + len(s.Content) + 64)

	b.WriteString("file: ")
	b.WriteString(s.FileID)
	b.WriteString("\n  notes: ")
	b.WriteString(s.Note)
	b.WriteString("\n  code:\n  ")
	b.WriteString(s.Content)
	b.WriteByte('\n')

	if len(s.Errors) > 0 {
		b.WriteString("  errors:\n")
		for _, e := range s.Errors {
			b.WriteString("  Line ")
			b.WriteString(strconv.FormatUint(uint64(e.Line), 10))
			b.WriteString(": ")
			b.WriteString(e.Message)
			b.WriteByte('\n')
		}
	}

	b.WriteString(EntrySeparator)
	b.WriteString("\n\n")
	return b.String()
}
