package main

import (
	"strings"

	"github.com/kainovaii/golive"
)

// Counter is the smallest possible live component: one field, a few actions.
type Counter struct {
	*golive.Base
	Count int `live:"count"`
}

func NewCounter() golive.Component {
	c := &Counter{Base: golive.NewBase("counter")}
	c.Action("increment", c.Increment)
	c.Action("decrement", c.Decrement)
	c.Action("add", c.Add)
	return c
}

func (c *Counter) Increment() { c.Count++ }
func (c *Counter) Decrement() { c.Count-- }
func (c *Counter) Add(n int)  { c.Count += n }

// Survey is a vote widget: options are fixed, votes accumulate per option
// for the life of the instance.
type Survey struct {
	*golive.Base
	Question string         `live:"question"`
	Options  []string       `live:"options"`
	Votes    map[string]int `live:"votes"`
	Voted    bool           `live:"voted"`
}

func NewSurvey() golive.Component {
	s := &Survey{
		Base:     golive.NewBase("survey"),
		Question: "Which paradigm do you reach for first?",
		Options:  []string{"Functional", "Imperative", "Declarative"},
		Votes:    map[string]int{},
	}
	s.Action("vote", s.Vote)
	s.Action("reset", s.Reset)
	return s
}

func (s *Survey) Vote(option string) {
	if s.Voted {
		return
	}
	for _, o := range s.Options {
		if o == option {
			if s.Votes == nil {
				s.Votes = map[string]int{}
			}
			s.Votes[option]++
			s.Voted = true
			return
		}
	}
}

func (s *Survey) Reset() {
	s.Votes = map[string]int{}
	s.Voted = false
}

// Signup demonstrates validation feedback: submit checks the fields and
// surfaces the first problem per field through the errors state entry,
// which the client runtime turns into input decorations.
type Signup struct {
	*golive.Base
	Name   string                  `live:"name"`
	Email  string                  `live:"email"`
	Done   bool                    `live:"done"`
	Errors golive.ValidationErrors `live:"errors"`
}

func NewSignup() golive.Component {
	s := &Signup{Base: golive.NewBase("signup")}
	s.Action("submit", s.Submit)
	return s
}

func (s *Signup) Submit() {
	s.Errors = golive.ValidationErrors{}

	if strings.TrimSpace(s.Name) == "" {
		s.Errors["name"] = "Name is required"
	}
	if !strings.Contains(s.Email, "@") {
		s.Errors["email"] = "A valid email address is required"
	}

	if len(s.Errors) == 0 {
		s.Errors = nil
		s.Done = true
	}
}
