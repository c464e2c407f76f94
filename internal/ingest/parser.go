// Package ingest turns deck files into question/answer pairs ready for
// the collection manager. Deck files are plain text or markdown with
// Q:/A:/T: prefixed blocks; a pair missing its question or answer is
// dropped, so only well-formed material reaches card creation.
package ingest

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Pair is one ingested question/answer with an optional topic label.
type Pair struct {
	Question string
	Answer   string
	Topic    string
}

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	topicPrefix    = "T:"
)

type readState int

const (
	seeking readState = iota
	readingQuestion
	readingAnswer
	readingTopic
)

// ParseFile reads a deck file and extracts all complete pairs.
func ParseFile(path string) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads deck text and extracts all complete pairs. Blocks may span
// multiple lines; `---` separates cards, and a new Q: block also starts a
// new card. Pairs with a blank question or answer are filtered out.
func Parse(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)
	var pairs []Pair
	var current Pair
	var block []string
	state := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch state {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Answer = content
		case readingTopic:
			current.Topic = strings.TrimSpace(content)
		}
		block = nil
	}

	finishPair := func() {
		flushBlock()
		if strings.TrimSpace(current.Question) != "" && strings.TrimSpace(current.Answer) != "" {
			pairs = append(pairs, current)
		}
		current = Pair{}
		state = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "---":
			finishPair()

		case strings.HasPrefix(line, questionPrefix):
			if state != seeking {
				finishPair()
			}
			flushBlock()
			state = readingQuestion
			block = append(block, trimOneSpace(line, questionPrefix))

		case strings.HasPrefix(line, answerPrefix):
			flushBlock()
			state = readingAnswer
			block = append(block, trimOneSpace(line, answerPrefix))

		case strings.HasPrefix(line, topicPrefix):
			flushBlock()
			state = readingTopic
			block = append(block, trimOneSpace(line, topicPrefix))

		default:
			if state != seeking {
				block = append(block, line)
			}
		}
	}

	finishPair()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// trimOneSpace strips the prefix and at most one following space, so
// "Q: text" and "Q:text" both yield "text" while deeper indentation is
// preserved.
func trimOneSpace(line, prefix string) string {
	content := line[len(prefix):]
	if strings.HasPrefix(content, " ") {
		content = content[1:]
	}
	return content
}
