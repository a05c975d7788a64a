/*
 The MIT License

 Permission is hereby granted, free of charge, to any person obtaining a copy
 of this software and associated documentation files (the "Software"), to deal
 in the Software without restriction, including without limitation the rights
 to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 copies of the Software, and to permit persons to whom the Software is
 furnished to do so, subject to the following conditions:

 The above copyright notice and this permission notice shall be included in
 all copies or substantial portions of the Software.

 THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
 THE SOFTWARE.
*/

package influxdb

import (
	"strconv"
	"strings"
)

// Term is the lexical role a string or Value plays in a line protocol line.
// Each role has its own escaping rules.
type Term uint8

const (
	// Measurement escapes commas and spaces.
	Measurement Term = iota
	// TagKey escapes commas, spaces and equal signs.
	TagKey
	// TagValue escapes backslashes, commas, spaces, equal signs and double quotes.
	TagValue
	// FieldKey escapes commas, spaces and equal signs.
	FieldKey
	// FieldValue encodes the value with its type suffix; text is quoted.
	FieldValue
)

var (
	commasSpaces = strings.NewReplacer(
		`,`, `\,`,
		` `, `\ `,
	)
	commasSpacesEquals = strings.NewReplacer(
		`,`, `\,`,
		` `, `\ `,
		`=`, `\=`,
	)
	quotesSlashes = strings.NewReplacer(
		`"`, `\"`,
		`\`, `\\`,
	)
	tagValueSpecials = strings.NewReplacer(
		`\`, `\\`,
		`,`, `\,`,
		` `, `\ `,
		`=`, `\=`,
		`"`, `\"`,
	)
)

// EscapeString escapes s for the given role. Key and measurement roles treat
// s as is; the value roles treat it as text.
func (t Term) EscapeString(s string) string {
	switch t {
	case Measurement:
		return commasSpaces.Replace(s)
	case TagKey, FieldKey:
		return commasSpacesEquals.Replace(s)
	default:
		return t.Escape(TextValue(s), false)
	}
}

// Escape renders v for the given role. useV2 only affects unsigned integer
// field values: InfluxDB 1.x has no unsigned type, so they are written with
// the signed "i" suffix unless useV2 is set, in which case "u" is used.
//
// Escaping is not idempotent: escaping an already escaped string escapes the
// backslashes and reserved characters again.
func (t Term) Escape(v Value, useV2 bool) string {
	switch t {
	case Measurement, TagKey, FieldKey:
		return t.EscapeString(v.String())
	case TagValue:
		return escapeTagValue(v)
	default:
		return escapeFieldValue(v, useV2)
	}
}

// escapeTagValue renders a tag value. Tags are always strings on the wire, so
// numbers carry no type suffix. An empty value stays empty: rejecting it is up
// to the caller.
func escapeTagValue(v Value) string {
	if v.kind == Text {
		return tagValueSpecials.Replace(v.s)
	}
	return v.String()
}

func escapeFieldValue(v Value, useV2 bool) string {
	switch v.kind {
	case Boolean:
		return strconv.FormatBool(v.b)
	case Float:
		return formatFloat(v.f)
	case SignedInteger:
		return strconv.FormatInt(v.i, 10) + "i"
	case UnsignedInteger:
		if useV2 {
			return strconv.FormatUint(v.u, 10) + "u"
		}
		return strconv.FormatUint(v.u, 10) + "i"
	case Text:
		return `"` + quotesSlashes.Replace(v.s) + `"`
	default:
		return ""
	}
}
