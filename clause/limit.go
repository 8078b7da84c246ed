package clause

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"geemysql/quote"
	"geemysql/value"
)

var ErrInvalidLimit = errors.New("invalid limit")

const limitSeparators = " ,:"

// Limit is an offset/count pair. A zero Count means no limit.
type Limit struct {
	Offset int64
	Count  int64
}

func (l Limit) IsZero() bool {
	return l.Count == 0
}

func (l Limit) String() string {
	if l.IsZero() {
		return ""
	}
	return "LIMIT " + strconv.FormatInt(l.Offset, 10) + "," + strconv.FormatInt(l.Count, 10)
}

func (l Limit) Fragment() quote.Fragment {
	return quote.Raw(l.String())
}

// ParseLimit accepts a count (10), "offset count" with a space, comma or
// colon between them, or [offset, count].
func ParseLimit(limit interface{}) (Limit, error) {
	v, err := value.From(limit)
	if err != nil {
		return Limit{}, fmt.Errorf("%w: %v", ErrInvalidLimit, err)
	}
	if v.Falsy() {
		return Limit{}, nil
	}
	switch v.Kind() {
	case value.Number:
		n, _ := v.Int64()
		return newLimit(0, n)
	case value.Text:
		s := strings.TrimSpace(v.Text())
		if i := strings.IndexAny(s, limitSeparators); i > 0 {
			return parseLimit(s[:i], strings.TrimLeft(s[i+1:], limitSeparators))
		}
		return parseLimit("0", s)
	case value.List:
		items := v.Items()
		switch len(items) {
		case 1:
			return parseLimit("0", items[0].Text())
		case 2:
			return parseLimit(items[0].Text(), items[1].Text())
		}
	}
	return Limit{}, fmt.Errorf("%w: %s", ErrInvalidLimit, v)
}

func parseLimit(offset, count string) (Limit, error) {
	o, err := strconv.ParseInt(strings.TrimSpace(offset), 10, 64)
	if err != nil {
		return Limit{}, fmt.Errorf("%w: offset %q", ErrInvalidLimit, offset)
	}
	c, err := strconv.ParseInt(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return Limit{}, fmt.Errorf("%w: count %q", ErrInvalidLimit, count)
	}
	return newLimit(o, c)
}

func newLimit(offset, count int64) (Limit, error) {
	if offset < 0 || count < 0 {
		return Limit{}, fmt.Errorf("%w: negative offset or count (%d,%d)", ErrInvalidLimit, offset, count)
	}
	return Limit{Offset: offset, Count: count}, nil
}
