package models

import "time"

// InterviewRecord is a generated interview as stored in the interviews collection.
// ID is assigned by the store and never written as a field.
type InterviewRecord struct {
	ID         string   `bson:"-" json:"id"`
	Role       string   `bson:"role" json:"role"`
	Type       string   `bson:"type" json:"type"`
	Level      string   `bson:"level" json:"level"`
	Techstack  []string `bson:"techstack" json:"techstack"`
	Questions  []string `bson:"questions" json:"questions"`
	UserID     string   `bson:"userId" json:"userId"`
	Finalized  bool     `bson:"finalized" json:"finalized"`
	CoverImage string   `bson:"coverImage" json:"coverImage"`
	CreatedAt  string   `bson:"createdAt" json:"createdAt"`
}

// same layout as JavaScript's Date.toISOString
const isoTimestamp = "2006-01-02T15:04:05.000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoTimestamp)
}

// NewInterviewRecord builds a finalized record from a validated request.
func NewInterviewRecord(req *GenerateRequest, questions []string, now time.Time) *InterviewRecord {
	techstack := req.Techstack
	if techstack == nil {
		techstack = []string{}
	}
	return &InterviewRecord{
		Role:       req.Role,
		Type:       req.Type,
		Level:      req.Level,
		Techstack:  techstack,
		Questions:  questions,
		UserID:     req.UserID,
		Finalized:  true,
		CoverImage: RandomInterviewCover(),
		CreatedAt:  FormatTimestamp(now),
	}
}
