package models

import (
	"fmt"
	"strings"
)

// Question is one yes/no statement in the interest inventory.
type Question struct {
	ID   string   `json:"id"`
	Type TypeCode `json:"type"`
	Text string   `json:"text"`
}

var statements = map[TypeCode][MaxScore]string{
	Realistic: {
		"I like to work on cars or motorbikes.",
		"I like to build things with my hands.",
		"I like to take care of animals or plants.",
		"I enjoy working outdoors.",
		"I like to fix electrical or household appliances.",
		"I would enjoy operating heavy machinery.",
		"I like putting things together from instructions or drawings.",
	},
	Investigative: {
		"I like to do puzzles.",
		"I like to do experiments.",
		"I enjoy science subjects.",
		"I like to figure out how things work.",
		"I like to analyse problems and situations.",
		"I enjoy working with numbers and charts.",
		"I like reading about new discoveries.",
	},
	Artistic: {
		"I am good at working independently on creative ideas.",
		"I like to read about art and music.",
		"I enjoy creative writing.",
		"I like to draw, paint or design.",
		"I like to play a musical instrument or sing.",
		"I enjoy acting or performing.",
		"I like to decorate spaces and arrange things beautifully.",
	},
	Social: {
		"I like to work in teams.",
		"I like to teach or train people.",
		"I like trying to help people solve their problems.",
		"I am interested in healing people.",
		"I enjoy learning about other cultures.",
		"I like to volunteer for community work.",
		"People come to me to talk about their problems.",
	},
	Enterprising: {
		"I am an ambitious person who sets goals.",
		"I like to try to influence or persuade people.",
		"I like selling things.",
		"I am quick to take on new responsibilities.",
		"I would like to start my own business.",
		"I like to lead groups and make decisions.",
		"I enjoy giving speeches.",
	},
	Conventional: {
		"I like to organise things like files, desks or offices.",
		"I like to have clear instructions to follow.",
		"I wouldn't mind working eight hours a day in an office.",
		"I pay attention to details.",
		"I like to do filing or typing.",
		"I am good at keeping records of my work.",
		"I like working with numbers in accounts or budgets.",
	},
}

var questionBank = buildQuestionBank()

// Questions are interleaved R, I, A, S, E, C so consecutive questions never
// probe the same type. IDs run q1..q42.
func buildQuestionBank() []Question {
	out := make([]Question, 0, MaxScore*len(CanonicalOrder))
	for i := 0; i < MaxScore; i++ {
		for _, code := range CanonicalOrder {
			out = append(out, Question{
				ID:   fmt.Sprintf("q%d", len(out)+1),
				Type: code,
				Text: statements[code][i],
			})
		}
	}
	return out
}

// Questions returns a copy of the question bank in presentation order.
func Questions() []Question {
	return append([]Question(nil), questionBank...)
}

// LookupQuestion finds a question by id (case-insensitive).
func LookupQuestion(id string) (Question, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, q := range questionBank {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// AffirmativeAnswer reports whether a stored choice counts towards a tally.
func AffirmativeAnswer(choice string) bool {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "yes", "y", "true", "1", "agree":
		return true
	default:
		return false
	}
}
