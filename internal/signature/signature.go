// Package signature implements the query-string HMAC scheme used by the
// ticketing platform to sign webhook callbacks.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"sort"
	"strings"
)

// Param is one decoded query parameter in request order.
type Param struct {
	Key   string
	Value string
}

// Verifier checks webhook signatures against a shared secret. The secret
// and debug flag are fixed at construction; Verify is a pure function of
// its inputs.
type Verifier struct {
	secret []byte
	debug  bool
}

func NewVerifier(secret string, debug bool) *Verifier {
	return &Verifier{secret: []byte(secret), debug: debug}
}

// Verify reports whether provided matches the HMAC-SHA256 of the
// canonical form of rawQuery. rawQuery must be the original query string
// from the request URL, before any framework re-encoding. An empty
// secret or an empty provided signature always fails.
func (v *Verifier) Verify(rawQuery, provided string) bool {
	if len(v.secret) == 0 || provided == "" {
		return false
	}

	params, err := parseQuery(rawQuery)
	if err != nil {
		return false
	}

	expected := v.sign(params)
	ok := hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
	if !ok && v.debug {
		slog.Debug("signature mismatch",
			"provided", provided,
			"expected", expected,
			"raw_query", rawQuery,
		)
	}
	return ok
}

// Sign computes the lowercase hex signature over the canonical form of
// rawQuery. It is the counterpart of Verify and is what a caller uses to
// produce a signed request.
func (v *Verifier) Sign(rawQuery string) (string, error) {
	params, err := parseQuery(rawQuery)
	if err != nil {
		return "", err
	}
	return v.sign(params), nil
}

func (v *Verifier) sign(params []Param) string {
	canonical := Canonicalize(params)
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// Canonicalize builds the signing input: parameters named "signature"
// are dropped, the rest are sorted by key then value and concatenated as
// key=value with no separator between pairs. Duplicate keys all
// contribute to the result.
func Canonicalize(params []Param) string {
	kept := make([]Param, 0, len(params))
	for _, p := range params {
		if p.Key == "signature" {
			continue
		}
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Key != kept[j].Key {
			return kept[i].Key < kept[j].Key
		}
		return kept[i].Value < kept[j].Value
	})

	var b strings.Builder
	for _, p := range kept {
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// parseQuery decodes rawQuery into an ordered parameter list. Unlike
// url.ParseQuery it keeps the original pair order and duplicate keys,
// which the canonical form depends on.
func parseQuery(rawQuery string) ([]Param, error) {
	var params []Param
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, err
		}
		val, err := url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Key: k, Value: val})
	}
	return params, nil
}
