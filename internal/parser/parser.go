package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/promptdeck/internal/domain"
)

const (
	suitPrefix        = "S:"
	titlePrefix       = "T:"
	descriptionPrefix = "D:"
	levelPrefix       = "L:"
	separator         = "---"
)

type state int

const (
	seeking state = iota
	readingTitle
	readingDescription
)

// ParseFile reads a prompt file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads prompts from an io.Reader. Cards without a title or suit are
// dropped. IDs are left empty for the caller to assign.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var cards []domain.Card
	var current domain.Card
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		switch currentState {
		case readingTitle:
			current.Title = content
		case readingDescription:
			current.Description = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Title != "" && current.Suit != "" {
			cards = append(cards, current)
		}
		current = domain.Card{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishCard()
			continue
		}

		switch {
		case strings.HasPrefix(line, titlePrefix):
			flushBlock()
			if current.Title != "" {
				// a second title starts a new card in the same suit
				suit := current.Suit
				finishCard()
				current.Suit = suit
			}
			currentState = readingTitle
			block = append(block, value(line, titlePrefix))
		case strings.HasPrefix(line, descriptionPrefix):
			flushBlock()
			currentState = readingDescription
			block = append(block, value(line, descriptionPrefix))
		case strings.HasPrefix(line, suitPrefix):
			flushBlock()
			currentState = seeking
			current.Suit = strings.ToLower(value(line, suitPrefix))
		case strings.HasPrefix(line, levelPrefix):
			flushBlock()
			currentState = seeking
			if lvl := strings.ToLower(value(line, levelPrefix)); lvl != "" {
				current.Level = &lvl
			}
		default:
			if currentState != seeking {
				block = append(block, line)
			}
		}
	}

	finishCard() // the last card has no trailing separator

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func value(line, prefix string) string {
	return strings.TrimSpace(line[len(prefix):])
}
