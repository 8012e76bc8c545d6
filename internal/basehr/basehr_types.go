package basehr

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The Base extapi encodes scalars inconsistently: ids and timestamps come
// back as numbers or as quoted strings depending on product and endpoint.
// These wrappers accept both.

type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// tolerate float-formatted integers
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		v = int64(fv)
	}
	*f = flexInt(v)
	return nil
}

func (f flexInt) Int() int { return int(f) }

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

func (f flexString) String() string { return string(f) }

// unixSeconds is an epoch timestamp; zero and "0" mean unset.
type unixSeconds int64

func (u *unixSeconds) UnmarshalJSON(b []byte) error {
	var f flexInt
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*u = unixSeconds(f)
	return nil
}

func (u unixSeconds) IsZero() bool { return u == 0 }

func (u unixSeconds) Time(loc *time.Location) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(int64(u), 0).In(loc)
}

// unwrapFirst handles endpoints that wrap their response object in a
// one-element JSON array.
func unwrapFirst(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return raw
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil || len(items) == 0 {
		return raw
	}
	return items[0]
}
