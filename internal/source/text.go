package source

import (
	"bufio"
	"io"
	"strings"
)

// TextLoader handles pre-extracted plain text. Pages are separated by
// form feed characters, one per source page.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) ([]Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var pages []Page
	var current strings.Builder
	flush := func() {
		pages = append(pages, Page{Number: len(pages) + 1, Text: current.String()})
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		for {
			ff := strings.IndexByte(line, '\f')
			if ff < 0 {
				break
			}
			if current.Len() > 0 {
				current.WriteByte('\n')
			}
			current.WriteString(line[:ff])
			flush()
			line = line[ff+1:]
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(current.String()) != "" || len(pages) == 0 {
		flush()
	}
	return pages, nil
}
