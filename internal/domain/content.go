package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrContentNotFound   = errors.New("content not found")
	ErrUnknownEntityKind = errors.New("unknown entity kind")
)

// EntityKind enumerates the admin-managed content collections.
type EntityKind int

const (
	KindEducation EntityKind = iota + 1
	KindExperience
	KindCertification
	KindAchievement
	KindProject
	KindPublication
)

var EntityKinds = []EntityKind{
	KindEducation,
	KindExperience,
	KindCertification,
	KindAchievement,
	KindProject,
	KindPublication,
}

func ParseEntityKind(s string) (EntityKind, error) {
	for _, k := range EntityKinds {
		if k.Slug() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEntityKind, s)
}

// Table is the backing relation name.
func (k EntityKind) Table() string {
	switch k {
	case KindEducation:
		return "education"
	case KindExperience:
		return "experiences"
	case KindCertification:
		return "certifications"
	case KindAchievement:
		return "achievements"
	case KindProject:
		return "projects"
	case KindPublication:
		return "publications"
	}
	panic(fmt.Sprintf("domain: invalid entity kind %d", int(k)))
}

// Slug is the URL path segment.
func (k EntityKind) Slug() string {
	switch k {
	case KindEducation:
		return "education"
	case KindExperience:
		return "experiences"
	case KindCertification:
		return "certifications"
	case KindAchievement:
		return "achievements"
	case KindProject:
		return "projects"
	case KindPublication:
		return "publications"
	}
	panic(fmt.Sprintf("domain: invalid entity kind %d", int(k)))
}

func (k EntityKind) Label() string {
	switch k {
	case KindEducation:
		return "Education"
	case KindExperience:
		return "Experience"
	case KindCertification:
		return "Certifications"
	case KindAchievement:
		return "Achievements"
	case KindProject:
		return "Projects"
	case KindPublication:
		return "Publications"
	}
	panic(fmt.Sprintf("domain: invalid entity kind %d", int(k)))
}

func (k EntityKind) String() string {
	return k.Slug()
}

// IconType is the badge shown next to an achievement.
type IconType string

const (
	IconTrophy IconType = "trophy"
	IconAward  IconType = "award"
	IconUsers  IconType = "users"
	IconStar   IconType = "star"
	IconMedal  IconType = "medal"
	IconTarget IconType = "target"
	IconZap    IconType = "zap"
)

var IconTypes = []IconType{IconTrophy, IconAward, IconUsers, IconStar, IconMedal, IconTarget, IconZap}

// ParseIconType accepts either the key or the label, case-insensitively.
// Anything unrecognised falls back to IconTrophy.
func ParseIconType(s string) IconType {
	for _, t := range IconTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t
		}
	}
	return IconTrophy
}

func (t IconType) Label() string {
	switch t {
	case IconTrophy:
		return "Trophy"
	case IconAward:
		return "Award"
	case IconUsers:
		return "Users"
	case IconStar:
		return "Star"
	case IconMedal:
		return "Medal"
	case IconTarget:
		return "Target"
	case IconZap:
		return "Zap"
	}
	return IconTrophy.Label()
}

// ContentFilter narrows a collection listing.
type ContentFilter struct {
	PublishedOnly bool
	FeaturedOnly  bool
}

type Education struct {
	ID              string    `json:"id"`
	Institution     string    `json:"institution"`
	Degree          string    `json:"degree"`
	Period          string    `json:"period"`
	Grade           *string   `json:"grade"`
	CertificateLink *string   `json:"certificate_link"`
	DisplayOrder    int       `json:"display_order"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Experience struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Period           string    `json:"period"`
	Responsibilities []string  `json:"responsibilities"`
	CertificateLink  *string   `json:"certificate_link"`
	DisplayOrder     int       `json:"display_order"`
	IsPublished      bool      `json:"is_published"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Certification struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Issuer           string     `json:"issuer"`
	IssueDate        *time.Time `json:"issue_date"`
	Image            *string    `json:"image"`
	VerificationLink *string    `json:"verification_link"`
	DisplayOrder     int        `json:"display_order"`
	IsPublished      bool       `json:"is_published"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Achievement struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Link         *string   `json:"link"`
	Icon         IconType  `json:"icon_type"`
	DisplayOrder int       `json:"display_order"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Project struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"short_description"`
	FullDescription  *string   `json:"full_description"`
	Technologies     []string  `json:"technologies"`
	Images           []string  `json:"images"`
	Thumbnail        *string   `json:"thumbnail"`
	GithubLink       *string   `json:"github_link"`
	LiveLink         *string   `json:"live_link"`
	DataLink         *string   `json:"data_link"`
	IsFeatured       bool      `json:"is_featured"`
	IsPublished      bool      `json:"is_published"`
	DisplayOrder     int       `json:"display_order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Publication struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Authors         []string   `json:"authors"`
	Description     *string    `json:"description"`
	DOI             *string    `json:"doi"`
	Link            *string    `json:"link"`
	PublicationDate *time.Time `json:"publication_date"`
	Publisher       *string    `json:"publisher"`
	IsPublished     bool       `json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
