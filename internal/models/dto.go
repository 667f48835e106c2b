package models

import "time"

// MemberDTO is the public summary of a member
type MemberDTO struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PhotoURL     string     `json:"photoUrl"`
	Age          int        `json:"age"`
	KnownAs      string     `json:"knownAs"`
	Gender       string     `json:"gender"`
	Introduction string     `json:"introduction"`
	LookingFor   string     `json:"lookingFor"`
	Interests    string     `json:"interests"`
	City         string     `json:"city"`
	Country      string     `json:"country"`
	Created      time.Time  `json:"created"`
	LastActive   time.Time  `json:"lastActive"`
	Photos       []PhotoDTO `json:"photos"`
}

// PhotoDTO is the public view of a photo
type PhotoDTO struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	IsMain bool   `json:"isMain"`
}

// LikeDTO is the summary of a user on either end of a like
type LikeDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	KnownAs  string `json:"knownAs"`
	Age      int    `json:"age"`
	PhotoURL string `json:"photoUrl"`
	City     string `json:"city"`
}

// MemberUpdate holds the profile fields a member may edit
type MemberUpdate struct {
	Introduction string `json:"introduction"`
	LookingFor   string `json:"lookingFor"`
	Interests    string `json:"interests"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

// Apply copies the editable fields onto u
func (m MemberUpdate) Apply(u *User) {
	u.Introduction = m.Introduction
	u.LookingFor = m.LookingFor
	u.Interests = m.Interests
	u.City = m.City
	u.Country = m.Country
}

// ToPhotoDTO projects a photo
func ToPhotoDTO(p *Photo) PhotoDTO {
	return PhotoDTO{ID: p.ID, URL: p.URL, IsMain: p.IsMain}
}

// ToMemberDTO projects a user and its loaded photos
func ToMemberDTO(u *User, today time.Time) MemberDTO {
	dto := MemberDTO{
		ID:           u.ID,
		Username:     u.Username,
		Age:          CalculateAge(u.DateOfBirth, today),
		KnownAs:      u.KnownAs,
		Gender:       u.Gender,
		Introduction: u.Introduction,
		LookingFor:   u.LookingFor,
		Interests:    u.Interests,
		City:         u.City,
		Country:      u.Country,
		Created:      u.CreatedAt,
		LastActive:   u.LastActive,
		Photos:       make([]PhotoDTO, 0, len(u.Photos)),
	}
	if main := u.MainPhoto(); main != nil {
		dto.PhotoURL = main.URL
	}
	for _, p := range u.Photos {
		dto.Photos = append(dto.Photos, ToPhotoDTO(p))
	}
	return dto
}

// ToLikeDTO projects a user on the other end of a like
func ToLikeDTO(u *User, today time.Time) LikeDTO {
	dto := LikeDTO{
		ID:       u.ID,
		Username: u.Username,
		KnownAs:  u.KnownAs,
		Age:      CalculateAge(u.DateOfBirth, today),
		City:     u.City,
	}
	if main := u.MainPhoto(); main != nil {
		dto.PhotoURL = main.URL
	}
	return dto
}
