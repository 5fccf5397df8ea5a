// Package harvest pulls relay split telemetry out of saved team stats
// pages. The pages open a split popup through inline script calls:
//
//	ShowMedleySplitWindow(['Back',...],['Name - Sr.',...],['00:27.10',...],'Team')
//	ShowFreeSplitWindow(['Name',...],['00:22.60',...],'Team')
//
// Calls are found in script bodies and in event-handler attributes.
package harvest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/okian/recordbook/internal/domain/model"
	"github.com/okian/recordbook/internal/domain/swimtime"
)

const (
	medleyCall = "ShowMedleySplitWindow"
	freeCall   = "ShowFreeSplitWindow"
)

// Page is what one stats page yielded.
type Page struct {
	Records []model.SplitRecord
	// Malformed counts calls that could not be read and were skipped.
	Malformed int
}

// Parse reads one stats page and returns its split records in page order.
// Identical calls repeated on a page are kept once.
func Parse(r io.Reader, season model.Season, gender model.Gender) (*Page, error) {
	z := html.NewTokenizer(r)
	page := &Page{}
	seen := make(map[string]bool)
	add := func(text string) {
		recs, malformed := scan(text)
		page.Malformed += malformed
		for _, rec := range recs {
			k := fmt.Sprint(rec.Hint, rec.Labels, rec.Swimmers, rec.Splits, rec.Team)
			if seen[k] {
				continue
			}
			seen[k] = true
			rec.Season = season
			rec.Gender = gender
			page.Records = append(page.Records, rec)
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return page, nil
			}
			return nil, fmt.Errorf("%w: %w", ErrReadPage, z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			for _, a := range t.Attr {
				add(a.Val)
			}
		case html.TextToken:
			add(string(z.Text()))
		}
	}
}

// scan finds every split window call in text. Calls that do not parse or
// whose arguments do not line up are counted and skipped.
func scan(text string) ([]model.SplitRecord, int) {
	var (
		out       []model.SplitRecord
		malformed int
	)
	for {
		i, name := nextCall(text)
		if i < 0 {
			return out, malformed
		}
		text = text[i+len(name):]
		args, rest, err := parseArgs(text)
		if err != nil {
			malformed++
			continue
		}
		text = rest
		if rec, ok := toRecord(name, args); ok {
			out = append(out, rec)
		} else {
			malformed++
		}
	}
}

func nextCall(text string) (int, string) {
	m := strings.Index(text, medleyCall+"(")
	f := strings.Index(text, freeCall+"(")
	switch {
	case m < 0 && f < 0:
		return -1, ""
	case f < 0 || (m >= 0 && m < f):
		return m, medleyCall
	}
	return f, freeCall
}

// toRecord maps call arguments to a split record. Calls whose arguments
// do not line up are ignored.
func toRecord(name string, args []arg) (model.SplitRecord, bool) {
	var (
		rec  model.SplitRecord
		list []arg
	)
	switch name {
	case medleyCall:
		if len(args) != 4 || !args[0].isList || !args[1].isList || !args[2].isList {
			return rec, false
		}
		rec.Hint = "medley"
		rec.Labels = args[0].list
		list = args[1:]
	case freeCall:
		if len(args) != 3 || !args[0].isList || !args[1].isList {
			return rec, false
		}
		rec.Hint = "free"
		list = args
	}
	rec.Swimmers = list[0].list
	for _, s := range list[1].list {
		rec.Splits = append(rec.Splits, swimtime.Parse(s))
	}
	rec.Team = list[2].str
	if len(rec.Swimmers) == 0 || len(rec.Swimmers) != len(rec.Splits) {
		return rec, false
	}
	return rec, true
}

// arg is a call argument: a quoted string or a list of them.
type arg struct {
	isList bool
	list   []string
	str    string
}

// parseArgs reads "(a, [b, c], ...)" from the start of s and returns the
// arguments and the text after the closing parenthesis.
func parseArgs(s string) ([]arg, string, error) {
	p := &cursor{s: s}
	if !p.eat('(') {
		return nil, s, errors.New("expected (")
	}
	var args []arg
	for {
		p.skipSpace()
		if p.eat(')') {
			return args, p.s[p.i:], nil
		}
		if len(args) > 0 && !p.eat(',') {
			return nil, s, fmt.Errorf("expected , at %d", p.i)
		}
		p.skipSpace()
		a, err := p.value()
		if err != nil {
			return nil, s, err
		}
		args = append(args, a)
	}
}

type cursor struct {
	s string
	i int
}

func (p *cursor) skipSpace() {
	for p.i < len(p.s) && strings.ContainsRune(" \t\r\n", rune(p.s[p.i])) {
		p.i++
	}
}

func (p *cursor) eat(c byte) bool {
	p.skipSpace()
	if p.i < len(p.s) && p.s[p.i] == c {
		p.i++
		return true
	}
	return false
}

func (p *cursor) value() (arg, error) {
	if p.eat('[') {
		var list []string
		for {
			if p.eat(']') {
				return arg{isList: true, list: list}, nil
			}
			if len(list) > 0 && !p.eat(',') {
				return arg{}, fmt.Errorf("expected , in list at %d", p.i)
			}
			if p.eat(']') {
				// trailing comma
				return arg{isList: true, list: list}, nil
			}
			s, err := p.quoted()
			if err != nil {
				return arg{}, err
			}
			list = append(list, s)
		}
	}
	s, err := p.quoted()
	return arg{str: s}, err
}

func (p *cursor) quoted() (string, error) {
	p.skipSpace()
	if p.i >= len(p.s) || (p.s[p.i] != '\'' && p.s[p.i] != '"') {
		return "", fmt.Errorf("expected string at %d", p.i)
	}
	q := p.s[p.i]
	p.i++
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		p.i++
		switch c {
		case '\\':
			if p.i < len(p.s) {
				b.WriteByte(p.s[p.i])
				p.i++
			}
		case q:
			return strings.TrimSpace(b.String()), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", errors.New("unterminated string")
}
