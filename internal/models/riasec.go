package models

import "strings"

// TypeCode is a single RIASEC letter.
type TypeCode string

const (
	Realistic     TypeCode = "R"
	Investigative TypeCode = "I"
	Artistic      TypeCode = "A"
	Social        TypeCode = "S"
	Enterprising  TypeCode = "E"
	Conventional  TypeCode = "C"
)

// MaxScore is the highest tally a single type can reach (seven questions per type).
const MaxScore = 7

// CanonicalOrder is the fixed R, I, A, S, E, C order. Ranking uses it to break ties.
var CanonicalOrder = []TypeCode{Realistic, Investigative, Artistic, Social, Enterprising, Conventional}

// InterestType describes one Holland interest category.
type InterestType struct {
	Code         TypeCode `json:"code"`
	Name         string   `json:"name"`
	LocalName    string   `json:"local_name"`
	Description  string   `json:"description"`
	Traits       []string `json:"traits"`
	Abilities    []string `json:"abilities"`
	Careers      []string `json:"careers"`
	Environments []string `json:"environments"`
	Color        string   `json:"color"`
	Icon         string   `json:"icon"`
}

var interestTypes = map[TypeCode]InterestType{
	Realistic: {
		Code:        Realistic,
		Name:        "Realistic",
		LocalName:   "यथार्थवादी",
		Description: "Doers who prefer hands-on work with tools, machines, plants or animals, and value practical, tangible results.",
		Traits:      []string{"Practical", "Hands-on", "Physical", "Mechanical", "Self-reliant"},
		Abilities:   []string{"Operating tools and machinery", "Repairing and building things", "Working outdoors", "Reading technical drawings"},
		Careers: []string{
			"Civil Engineer", "Electrician", "Mechanical Technician", "Agricultural Scientist",
			"Pilot", "Carpenter", "Automobile Engineer", "Forest Officer",
		},
		Environments: []string{"Workshops", "Construction sites", "Farms and field work", "Factories"},
		Color:        "#e67e22",
		Icon:         "wrench",
	},
	Investigative: {
		Code:        Investigative,
		Name:        "Investigative",
		LocalName:   "अनुसन्धानात्मक",
		Description: "Thinkers who enjoy observing, learning, analysing and solving problems with ideas and data.",
		Traits:      []string{"Analytical", "Curious", "Logical", "Precise", "Independent"},
		Abilities:   []string{"Scientific reasoning", "Research and experimentation", "Mathematics", "Interpreting data"},
		Careers: []string{
			"Doctor", "Research Scientist", "Software Engineer", "Pharmacist",
			"Data Analyst", "Biotechnologist", "Economist", "Laboratory Technologist",
		},
		Environments: []string{"Laboratories", "Hospitals", "Universities", "Research institutes"},
		Color:        "#2980b9",
		Icon:         "microscope",
	},
	Artistic: {
		Code:        Artistic,
		Name:        "Artistic",
		LocalName:   "कलात्मक",
		Description: "Creators who value self-expression and prefer unstructured situations where they can use imagination.",
		Traits:      []string{"Creative", "Expressive", "Original", "Intuitive", "Independent"},
		Abilities:   []string{"Drawing and design", "Writing", "Music and performance", "Visual thinking"},
		Careers: []string{
			"Graphic Designer", "Architect", "Journalist", "Musician",
			"Fashion Designer", "Film Maker", "Interior Designer", "Content Writer",
		},
		Environments: []string{"Studios", "Media houses", "Theatres", "Design agencies"},
		Color:        "#8e44ad",
		Icon:         "palette",
	},
	Social: {
		Code:        Social,
		Name:        "Social",
		LocalName:   "सामाजिक",
		Description: "Helpers who like working with people to inform, teach, care for, or serve them.",
		Traits:      []string{"Helpful", "Empathetic", "Cooperative", "Patient", "Friendly"},
		Abilities:   []string{"Teaching and explaining", "Listening", "Counselling", "Teamwork"},
		Careers: []string{
			"Teacher", "Nurse", "Social Worker", "Counsellor",
			"Psychologist", "Community Health Worker", "Human Resource Officer", "Physiotherapist",
		},
		Environments: []string{"Schools", "Hospitals and clinics", "NGOs", "Community centres"},
		Color:        "#27ae60",
		Icon:         "users",
	},
	Enterprising: {
		Code:        Enterprising,
		Name:        "Enterprising",
		LocalName:   "उद्यमशील",
		Description: "Persuaders who like to lead, influence and take risks to reach organisational or economic goals.",
		Traits:      []string{"Ambitious", "Energetic", "Confident", "Persuasive", "Sociable"},
		Abilities:   []string{"Leadership", "Public speaking", "Negotiation", "Decision making"},
		Careers: []string{
			"Entrepreneur", "Marketing Manager", "Lawyer", "Sales Executive",
			"Hotel Manager", "Politician", "Banker", "Real Estate Agent",
		},
		Environments: []string{"Businesses and start-ups", "Corporate offices", "Sales floors", "Courts"},
		Color:        "#c0392b",
		Icon:         "briefcase",
	},
	Conventional: {
		Code:        Conventional,
		Name:        "Conventional",
		LocalName:   "परम्परागत",
		Description: "Organisers who like working with data and details, following clear procedures and keeping things in order.",
		Traits:      []string{"Organised", "Accurate", "Dependable", "Methodical", "Efficient"},
		Abilities:   []string{"Record keeping", "Working with numbers", "Planning and scheduling", "Attention to detail"},
		Careers: []string{
			"Accountant", "Bank Officer", "Auditor", "Office Administrator",
			"Tax Officer", "Librarian", "Data Entry Specialist", "Financial Analyst",
		},
		Environments: []string{"Offices", "Banks", "Government agencies", "Finance departments"},
		Color:        "#16a085",
		Icon:         "clipboard",
	},
}

// LookupType returns the interest type for code.
func LookupType(code TypeCode) (InterestType, bool) {
	t, ok := interestTypes[TypeCode(strings.ToUpper(string(code)))]
	return t, ok
}

// InterestTypes returns all six types in canonical order.
func InterestTypes() []InterestType {
	out := make([]InterestType, 0, len(CanonicalOrder))
	for _, c := range CanonicalOrder {
		out = append(out, interestTypes[c])
	}
	return out
}

// ParseCode splits a top-three code into type codes. ok is false unless the
// code is exactly three distinct known letters.
func ParseCode(code string) ([]TypeCode, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return nil, false
	}
	out := make([]TypeCode, 0, 3)
	for _, r := range code {
		tc := TypeCode(string(r))
		if _, ok := interestTypes[tc]; !ok {
			return nil, false
		}
		for _, seen := range out {
			if seen == tc {
				return nil, false
			}
		}
		out = append(out, tc)
	}
	return out, true
}
