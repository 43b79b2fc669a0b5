package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// EmploymentType holds the code LinkedIn uses in the f_JT parameter.
type EmploymentType string

const (
	FullTime        EmploymentType = "F"
	PartTime        EmploymentType = "P"
	Contract        EmploymentType = "C"
	Temporary       EmploymentType = "T"
	Internship      EmploymentType = "I"
	OtherEmployment EmploymentType = "O"
)

func (t EmploymentType) String() string {
	switch t {
	case FullTime:
		return "Full-time"
	case PartTime:
		return "Part-time"
	case Contract:
		return "Contract"
	case Temporary:
		return "Temporary"
	case Internship:
		return "Internship"
	case OtherEmployment:
		return "Other"
	default:
		return string(t)
	}
}

// ExperienceLevel holds the value LinkedIn uses in the f_E parameter.
// The zero value means the level was not stated.
type ExperienceLevel int

const (
	ExperienceInternship ExperienceLevel = iota + 1
	ExperienceEntryLevel
	ExperienceAssociate
	ExperienceMidSenior
	ExperienceDirector
	ExperienceExecutive
)

func (l ExperienceLevel) String() string {
	switch l {
	case ExperienceInternship:
		return "Internship"
	case ExperienceEntryLevel:
		return "Entry level"
	case ExperienceAssociate:
		return "Associate"
	case ExperienceMidSenior:
		return "Mid-Senior level"
	case ExperienceDirector:
		return "Director"
	case ExperienceExecutive:
		return "Executive"
	default:
		return ""
	}
}

// WorkMode holds the value LinkedIn uses in the f_WT parameter.
type WorkMode int

const (
	WorkOnSite WorkMode = iota + 1
	WorkRemote
	WorkHybrid
)

// DefaultLocation is used when a filter does not name one.
const DefaultLocation = "United States"

// Filter captures the search criteria for job listings. It is a plain
// value; construct it once and pass it around by copy.
type Filter struct {
	Title            string
	Location         string
	EmploymentTypes  []EmploymentType
	ExperienceLevels []ExperienceLevel
	WorkModes        []WorkMode
	FewApplicants    bool
	MaxAge           time.Duration
}

// Params serializes the filter into LinkedIn search query parameters.
// Every optional field maps to exactly one parameter key.
func (f Filter) Params() url.Values {
	params := url.Values{}

	if f.Title != "" {
		params.Set("keywords", f.Title)
	}

	location := f.Location
	if location == "" {
		location = DefaultLocation
	}
	params.Set("location", location)

	if len(f.EmploymentTypes) > 0 {
		codes := make([]string, 0, len(f.EmploymentTypes))
		for _, et := range f.EmploymentTypes {
			codes = append(codes, string(et))
		}
		params.Set("f_JT", strings.Join(codes, ","))
	}

	if len(f.ExperienceLevels) > 0 {
		codes := make([]string, 0, len(f.ExperienceLevels))
		for _, level := range f.ExperienceLevels {
			codes = append(codes, strconv.Itoa(int(level)))
		}
		params.Set("f_E", strings.Join(codes, ","))
	}

	if len(f.WorkModes) > 0 {
		codes := make([]string, 0, len(f.WorkModes))
		for _, mode := range f.WorkModes {
			codes = append(codes, strconv.Itoa(int(mode)))
		}
		params.Set("f_WT", strings.Join(codes, ","))
	}

	if f.FewApplicants {
		params.Set("f_JIYN", "true")
	}

	if f.MaxAge > 0 {
		params.Set("f_TPR", fmt.Sprintf("r%d", int(f.MaxAge.Seconds())))
	}

	return params
}

// ParseEmploymentType maps a CLI name to its LinkedIn code.
func ParseEmploymentType(value string) (EmploymentType, error) {
	switch normalizeName(value) {
	case "fulltime":
		return FullTime, nil
	case "parttime":
		return PartTime, nil
	case "contract":
		return Contract, nil
	case "temporary":
		return Temporary, nil
	case "internship":
		return Internship, nil
	case "other":
		return OtherEmployment, nil
	default:
		return "", fmt.Errorf("unknown employment type: %s", value)
	}
}

// ParseExperienceLevel maps a CLI name to its LinkedIn value.
func ParseExperienceLevel(value string) (ExperienceLevel, error) {
	switch normalizeName(value) {
	case "internship":
		return ExperienceInternship, nil
	case "entry", "entrylevel":
		return ExperienceEntryLevel, nil
	case "associate":
		return ExperienceAssociate, nil
	case "midsenior", "midseniorlevel":
		return ExperienceMidSenior, nil
	case "director":
		return ExperienceDirector, nil
	case "executive":
		return ExperienceExecutive, nil
	default:
		return 0, fmt.Errorf("unknown experience level: %s", value)
	}
}

// ParseWorkMode maps a CLI name to its LinkedIn value.
func ParseWorkMode(value string) (WorkMode, error) {
	switch normalizeName(value) {
	case "onsite":
		return WorkOnSite, nil
	case "remote":
		return WorkRemote, nil
	case "hybrid":
		return WorkHybrid, nil
	default:
		return 0, fmt.Errorf("unknown work mode: %s", value)
	}
}

func normalizeName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, " ", "")
	return value
}
