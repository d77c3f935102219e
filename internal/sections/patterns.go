// Package sections classifies the lines of extracted résumé text into named sections.
package sections

import (
	"regexp"
	"strings"
)

// SummarySection collects every line before the first recognized header
const SummarySection = "summary"

// Canonical section names of the standard table
const (
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionDesignSkills   = "designSkills"
	SectionSkills         = "skills"
	SectionCertifications = "certifications"
	SectionLanguages      = "languages"
	SectionPortfolio      = "portfolio"
	SectionAchievements   = "achievements"
	SectionPublications   = "publications"
	SectionClientList     = "clientList"
)

// Pattern is a named header matcher
type Pattern struct {
	Name    string
	Matcher *regexp.Regexp
}

// Table is an ordered list of patterns. When a line satisfies several
// patterns, the earliest one in the table wins.
type Table []Pattern

// Match returns the name of the first pattern matching line
func (t Table) Match(line string) (string, bool) {
	for _, p := range t {
		if p.Matcher.MatchString(line) {
			return p.Name, true
		}
	}
	return "", false
}

// Names returns the pattern names in table order
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, p := range t {
		names[i] = p.Name
	}
	return names
}

// HeaderPattern compiles a case-insensitive matcher that accepts a whole line
// consisting of one of the given phrases, optionally decorated with leading
// bullets or markdown hashes and a trailing colon. Phrases are regular
// expressions; spaces inside them match any run of whitespace.
func HeaderPattern(phrases ...string) *regexp.Regexp {
	alts := make([]string, len(phrases))
	for i, p := range phrases {
		alts[i] = strings.ReplaceAll(p, " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)^[\s#*•·\-–—|>]*(?:` + strings.Join(alts, "|") + `)[\s:：.\-–—|]*$`)
}

// designSkills precedes skills so "Design Skills" resolves to the narrower section.
var standardTable = Table{
	{SectionExperience, HeaderPattern(
		`(?:work |professional |employment |relevant |industry )?experiences?`,
		`employment(?: history)?`,
		`work history`,
		`career(?: history)?`,
		`experiencia(?: laboral| profesional)?`,
		`expérience(?:s)?(?: professionnelles?)?`,
	)},
	{SectionEducation, HeaderPattern(
		`education(?:al background)?`,
		`education (?:&|and) training`,
		`academic (?:background|history|qualifications)`,
		`educación|formación(?: académica)?`,
		`formation`,
	)},
	{SectionDesignSkills, HeaderPattern(
		`design (?:skills|tools|software|expertise)`,
		`creative (?:skills|tools)`,
		`software (?:&|and) tools`,
	)},
	{SectionSkills, HeaderPattern(
		`(?:(?:technical|core|key|soft|hard|professional|relevant|other|additional|transferable|design|computer|it|digital|software) )?skills(?: (?:&|and) (?:competencies|expertise|abilities))?`,
		`(?:core |key )?competencies`,
		`expertise`,
		`tech(?:nical)? stack`,
		`habilidades|competencias|compétences`,
	)},
	{SectionCertifications, HeaderPattern(
		`certifications?`,
		`certificates?`,
		`licen[cs]es?(?: (?:&|and) certifications?)?`,
		`certificaciones`,
	)},
	{SectionLanguages, HeaderPattern(
		`(?:spoken |foreign )?languages?`,
		`idiomas|langues`,
	)},
	{SectionPortfolio, HeaderPattern(
		`portfolio`,
		`selected (?:work|works|projects)`,
		`work samples`,
		`case studies`,
		`portafolio`,
	)},
	{SectionAchievements, HeaderPattern(
		`(?:key )?achievements`,
		`accomplishments`,
		`awards(?: (?:&|and) (?:honou?rs|recognition))?`,
		`honou?rs(?: (?:&|and) awards)?`,
		`logros|premios`,
	)},
	{SectionPublications, HeaderPattern(
		`publications?`,
		`(?:research )?papers`,
		`publicaciones`,
	)},
	{SectionClientList, HeaderPattern(
		`(?:selected |key |notable )?clients?(?: list)?`,
		`client(?:e|s)? (?:roster|portfolio)`,
		`clientes`,
	)},
}

// StandardTable returns the built-in résumé header table. The returned slice
// is a copy; the compiled matchers are shared and safe for concurrent use.
func StandardTable() Table {
	out := make(Table, len(standardTable))
	copy(out, standardTable)
	return out
}
