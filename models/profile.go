package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultSkillType = "common"

type Skill struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Label     string             `bson:"label" json:"label"`
	SkillType string             `bson:"skillType" json:"skillType"`
}

type Education struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	School       string             `bson:"school" json:"school"`
	Degree       string             `bson:"degree" json:"degree"`
	FieldOfStudy string             `bson:"fieldofstudy" json:"fieldofstudy"`
	From         time.Time          `bson:"from" json:"from"`
	To           *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current      bool               `bson:"current" json:"current"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
}

type Social struct {
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	VK        string `bson:"vk,omitempty" json:"vk,omitempty"`
	TikTok    string `bson:"tiktok,omitempty" json:"tiktok,omitempty"`
	Telegram  string `bson:"telegram,omitempty" json:"telegram,omitempty"`
}

type Contacts struct {
	MobilePhone string `bson:"mobilePhone,omitempty" json:"mobilePhone,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	Fax         string `bson:"fax,omitempty" json:"fax,omitempty"`
	Email       string `bson:"email,omitempty" json:"email,omitempty"`
	Viber       string `bson:"viber,omitempty" json:"viber,omitempty"`
	Hangouts    string `bson:"hangouts,omitempty" json:"hangouts,omitempty"`
	Skype       string `bson:"skype,omitempty" json:"skype,omitempty"`
}

// Profile is keyed by its owning user. Owner is only filled on reads that
// join the users collection.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"-"`
	Owner     *UserSummary       `bson:"owner,omitempty" json:"user,omitempty"`
	Company   string             `bson:"company,omitempty" json:"company,omitempty"`
	Website   string             `bson:"website,omitempty" json:"website,omitempty"`
	Location  string             `bson:"location,omitempty" json:"location,omitempty"`
	Status    string             `bson:"status,omitempty" json:"status,omitempty"`
	Bio       string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Skills    []Skill            `bson:"skills" json:"skills"`
	Education []Education        `bson:"education" json:"education"`
	Social    Social             `bson:"social" json:"social"`
	Contacts  Contacts           `bson:"contacts" json:"contacts"`
	Date      time.Time          `bson:"date" json:"date"`
}

// ProfileUpdate carries the fields of an upsert. Empty values leave the
// stored value untouched; a nil Skills slice keeps the current skills.
type ProfileUpdate struct {
	Company  string
	Website  string
	Location string
	Status   string
	Bio      string
	Skills   []Skill
	Social   Social
	Contacts Contacts
}

// SkillList accepts skills as "go, sql", ["go", "sql"] or
// [{"label":"go","skillType":"backend"}] and normalizes them.
type SkillList []Skill

var errSkillFormat = errors.New("skills must be a string or a list")

func (s *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = ParseSkills(strings.Split(raw, ","))
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(SkillList, 0, len(items))
		for _, item := range items {
			var label string
			if err := json.Unmarshal(item, &label); err == nil {
				out = append(out, ParseSkills([]string{label})...)
				continue
			}
			var obj struct {
				Label     string `json:"label"`
				SkillType string `json:"skillType"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				return errSkillFormat
			}
			if skill, ok := NewSkill(obj.Label, obj.SkillType); ok {
				out = append(out, skill)
			}
		}
		*s = out
		return nil
	}
	return errSkillFormat
}

// NewSkill trims the label and fills the default type. Blank labels are
// rejected.
func NewSkill(label, skillType string) (Skill, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Skill{}, false
	}
	skillType = strings.TrimSpace(skillType)
	if skillType == "" {
		skillType = DefaultSkillType
	}
	return Skill{ID: primitive.NewObjectID(), Label: label, SkillType: skillType}, true
}

func ParseSkills(labels []string) []Skill {
	out := make([]Skill, 0, len(labels))
	for _, l := range labels {
		if skill, ok := NewSkill(l, ""); ok {
			out = append(out, skill)
		}
	}
	return out
}
