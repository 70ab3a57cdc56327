package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MatchKey is the normalized project name shared by every file that
// describes the same project, whatever folder it lives in.
type MatchKey string

// Percentage is a rounded percentage that may be undefined (empty reference
// set). Undefined values render as the missing marker.
type Percentage struct {
	Value   float64
	Defined bool
}

// Undefined is the explicit "no data" percentage
var Undefined = Percentage{}

// DefinedPercentage returns a defined percentage
func DefinedPercentage(v float64) Percentage {
	return Percentage{Value: v, Defined: true}
}

// String renders the shortest decimal form of the value, or "" when undefined
func (p Percentage) String() string {
	if !p.Defined {
		return ""
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

// ProjectRecord holds the per-project attributes produced by the extractor
type ProjectRecord struct {
	Key            MatchKey   `json:"key"`
	RowCount       int        `json:"row_count"`
	Size           SizeClass  `json:"size"`
	Departure      Percentage `json:"-"`
	LeftCount      int        `json:"left_count"`
	ReferenceCount int        `json:"reference_count"`
}

// DeveloperRecord is one developer of one project
type DeveloperRecord struct {
	Developer string   `json:"developer"`
	Project   MatchKey `json:"project"`
	WorkType  WorkType `json:"work_type"`
	Left      bool     `json:"left"`
}

// SizeClass is the project size bucket
type SizeClass int

const (
	SizeUnknown SizeClass = iota
	SizeSmall
	SizeMedium
	SizeLarge
)

// SizeClasses lists the classes in small -> large order
var SizeClasses = []SizeClass{SizeSmall, SizeMedium, SizeLarge}

var sizeLabels = map[string]SizeClass{
	"small":  SizeSmall,
	"小规模项目":  SizeSmall,
	"小项目":    SizeSmall,
	"medium": SizeMedium,
	"middle": SizeMedium,
	"中规模项目":  SizeMedium,
	"中项目":    SizeMedium,
	"large":  SizeLarge,
	"big":    SizeLarge,
	"大规模项目":  SizeLarge,
	"大项目":    SizeLarge,
}

// ParseSizeClass accepts every label the research scripts have used
func ParseSizeClass(s string) (SizeClass, error) {
	if c, ok := sizeLabels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return SizeUnknown, fmt.Errorf("unknown size class %q", s)
}

func (c SizeClass) String() string {
	switch c {
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return "unknown"
	}
}

// Chinese returns the short Chinese label used in the published tables
func (c SizeClass) Chinese() string {
	switch c {
	case SizeSmall:
		return "小项目"
	case SizeMedium:
		return "中项目"
	case SizeLarge:
		return "大项目"
	default:
		return ""
	}
}

// JoinTiming says whether a developer joined early or late
type JoinTiming int

const (
	JoinEarly JoinTiming = 0
	JoinLate  JoinTiming = 1
)

// ParseJoinTiming accepts early|late or their numeric codes
func ParseJoinTiming(s string) (JoinTiming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "early", "0":
		return JoinEarly, nil
	case "late", "1":
		return JoinLate, nil
	}
	return JoinEarly, fmt.Errorf("unknown join timing %q", s)
}

// Code is the numeric encoding used in regressions (early=0, late=1)
func (j JoinTiming) Code() float64 {
	return float64(j)
}

func (j JoinTiming) String() string {
	if j == JoinLate {
		return "late"
	}
	return "early"
}

// WorkType is the main work type of a developer as assigned by the upstream
// classification
type WorkType string

// ParseWorkType trims the label and, when allowed is non-empty, restricts it
// to that closed set (case-insensitive, canonical spelling from allowed).
func ParseWorkType(s string, allowed []string) (WorkType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty work type")
	}
	if len(allowed) == 0 {
		return WorkType(s), nil
	}
	for _, a := range allowed {
		if strings.EqualFold(a, s) {
			return WorkType(a), nil
		}
	}
	return "", fmt.Errorf("work type %q not in %v", s, allowed)
}

// ParseLeft parses the binary left/stayed label
func ParseLeft(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "yes":
		return true, nil
	case "0", "0.0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid leave flag %q", s)
}
