package partner

import (
	"fmt"
	"strconv"
	"strings"
)

// Signal is an inbound content classification used to pick a persona.
// Nil or empty fields are absent.
type Signal struct {
	Audience    []string `json:"audience,omitempty"`
	Platform    []string `json:"platform,omitempty"`
	ContentType []string `json:"contentType,omitempty"`
	Reach       *int64   `json:"reach,omitempty"`
}

// Normalize returns a copy with set values canonicalised.
func (s Signal) Normalize() Signal {
	out := Signal{
		Audience:    NormalizeSet(s.Audience),
		Platform:    NormalizeSet(s.Platform),
		ContentType: NormalizeSet(s.ContentType),
	}
	if s.Reach != nil {
		v := *s.Reach
		out.Reach = &v
	}
	return out
}

// ParseSignal builds a signal from raw query-style values. Set fields accept
// comma separated lists; reach must be a non-negative integer when given.
func ParseSignal(audience, platform, contentType, reach string) (Signal, error) {
	s := Signal{
		Audience:    SplitList(audience),
		Platform:    SplitList(platform),
		ContentType: SplitList(contentType),
	}
	if r := strings.TrimSpace(reach); r != "" {
		n, err := strconv.ParseInt(r, 10, 64)
		if err != nil || n < 0 {
			return Signal{}, fmt.Errorf("%w: reach %q must be a non-negative integer", ErrInvalidSignal, reach)
		}
		s.Reach = &n
	}
	return s.Normalize(), nil
}

// SplitList splits a comma separated value into a normalised set.
func SplitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return NormalizeSet(strings.Split(v, ","))
}
