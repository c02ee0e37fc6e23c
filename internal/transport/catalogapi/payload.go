package catalogapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// envelope accepts either a bare JSON array or {"data": [...]}.
type envelope[T any] []T

func (e *envelope[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*e = items
		return nil
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	*e = wrapped.Data
	return nil
}

// flexString accepts strings and numbers (ids come as either).
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat accepts numbers, numeric strings and null. Anything else is absent.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
		if err == nil {
			f.v, f.ok = v, true
		}
		return nil
	}
	var v float64
	if json.Unmarshal(b, &v) == nil {
		f.v, f.ok = v, true
	}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.ok {
		return nil
	}
	v := f.v
	return &v
}

type named struct {
	Name string `json:"name"`
}

type rawPrice struct {
	Selling  flexFloat `json:"selling"`
	Purchase flexFloat `json:"purchase"`
}

// rawPrices accepts a list of prices or a single price object.
type rawPrices []rawPrice

func (p *rawPrices) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null":
		return nil
	case len(b) > 0 && b[0] == '{':
		var one rawPrice
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*p = rawPrices{one}
		return nil
	}
	var many []rawPrice
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*p = many
	return nil
}

type rawBook struct {
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Language    string     `json:"language"`
	Authors     []named    `json:"authors"`
	Categories  []named    `json:"categories"`
	Price       rawPrices  `json:"price"`
}

type rawAuthor struct {
	ID         flexString `json:"id"`
	Name       string     `json:"name"`
	PenName    string     `json:"pen_name"`
	Bio        string     `json:"bio"`
	BookCount  flexFloat  `json:"book_count"`
	BooksCount flexFloat  `json:"books_count"`
}
