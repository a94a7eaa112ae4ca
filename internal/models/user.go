package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account classes stored in users.user_type.
const (
	UserTypePublicProvider     = 0 // free, the only class that shows up in search
	UserTypePublicProviderPaid = 1
	UserTypePrivateProvider    = 2
	UserTypeAdmin              = 3
)

// IsProviderType reports whether t is one of the healthcare provider account classes.
func IsProviderType(t int) bool {
	return t == UserTypePublicProvider || t == UserTypePublicProviderPaid || t == UserTypePrivateProvider
}

type User struct {
	bun.BaseModel          `bun:"table:users,alias:u"`
	ID                     int64     `bun:"id,pk,autoincrement" json:"-"`
	Name                   string    `bun:"name,notnull" json:"name"`
	Email                  string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash           string    `bun:"password_hash,notnull" json:"-"`
	UUID                   uuid.UUID `bun:"uuid,notnull,unique,type:uuid" json:"uuid"`
	RegisteredOn           time.Time `bun:"registered_on,notnull,default:current_timestamp" json:"-"`
	IsConfirmed            bool      `bun:"is_confirmed,notnull" json:"is_confirmed"`
	IsInitialSetupComplete bool      `bun:"is_initial_setup_complete,notnull" json:"is_initial_setup_complete"`
	IsVerifiedProfessional bool      `bun:"is_verified_professional,notnull" json:"is_verified_professional"`
	LastActive             time.Time `bun:"last_active,notnull,default:current_timestamp" json:"-"`
	ProfilePictureLink     *string   `bun:"profile_picture_link" json:"profile_picture_link"`
	UserType               *int      `bun:"user_type" json:"user_type"`
	TokenVersion           int       `bun:"token_version,notnull" json:"-"`

	Provider *Provider `bun:"rel:has-one,join:id=user_id" json:"provider"`
	Admin    *Admin    `bun:"rel:has-one,join:id=user_id" json:"-"`
}

// IsPubliclyDiscoverable reports whether the account may appear in search results.
func (u *User) IsPubliclyDiscoverable() bool {
	return u.UserType != nil && *u.UserType == UserTypePublicProvider && u.IsVerifiedProfessional
}

// FirstAddress returns the account's first registered practice address, or nil.
func (u *User) FirstAddress() *Address {
	if u.Provider == nil || len(u.Provider.Addresses) == 0 {
		return nil
	}
	return u.Provider.Addresses[0]
}

// Provider is the searchable profile of a care-giving professional, 1:1 with its user.
type Provider struct {
	bun.BaseModel                  `bun:"table:providers,alias:p"`
	UserID                         int64    `bun:"user_id,pk" json:"-"`
	ProviderTypeID                 *int64   `bun:"provider_type_id" json:"-"`
	SpecialtyID                    *int64   `bun:"specialty_id" json:"-"`
	SubspecialtyOrSpecialInterests *string  `bun:"subspecialty_or_special_interests" json:"subspecialty_or_special_interests"`
	ServicesProvided               *string  `bun:"services_provided" json:"services_provided"`
	ServicesNotProvided            *string  `bun:"services_not_provided" json:"services_not_provided"`
	EducationAndQualifications     *string  `bun:"education_and_qualifications" json:"education_and_qualifications"`
	ResearchInterests              *string  `bun:"research_interests" json:"research_interests"`
	ConsultationWait               *float64 `bun:"consultation_wait" json:"consultation_wait"`
	ReferralInstructions           *string  `bun:"referral_instructions" json:"referral_instructions"`

	Specialty           *Specialty            `bun:"rel:belongs-to,join:specialty_id=id" json:"specialty"`
	Addresses           []*Address            `bun:"rel:has-many,join:user_id=user_id" json:"addresses"`
	ProceduralWaitTimes []*ProceduralWaitTime `bun:"rel:has-many,join:user_id=user_id" json:"procedural_wait_times"`
	Languages           []*Language           `bun:"m2m:providers_to_languages,join:Provider=Language" json:"languages"`
	Designations        []*Designation        `bun:"m2m:providers_to_designations,join:Provider=Designation" json:"designations"`
}

type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:adm"`
	UserID        int64 `bun:"user_id,pk"`
}

type ProviderToLanguage struct {
	bun.BaseModel `bun:"table:providers_to_languages,alias:pl"`
	ProviderID    int64     `bun:"provider_id,pk"`
	Provider      *Provider `bun:"rel:belongs-to,join:provider_id=user_id"`
	LanguageID    int64     `bun:"language_id,pk"`
	Language      *Language `bun:"rel:belongs-to,join:language_id=id"`
}

type ProviderToDesignation struct {
	bun.BaseModel `bun:"table:providers_to_designations,alias:pd"`
	ProviderID    int64        `bun:"provider_id,pk"`
	Provider      *Provider    `bun:"rel:belongs-to,join:provider_id=user_id"`
	DesignationID int64        `bun:"designation_id,pk"`
	Designation   *Designation `bun:"rel:belongs-to,join:designation_id=id"`
}

// ProceduralWaitTime is the wait, in weeks, a provider quotes for one procedure.
type ProceduralWaitTime struct {
	bun.BaseModel `bun:"table:procedural_wait_times,alias:pwt"`
	ID            int64    `bun:"id,pk,autoincrement" json:"-"`
	UserID        int64    `bun:"user_id,notnull" json:"-"`
	Procedure     *string  `bun:"procedure" json:"procedure"`
	WaitTime      *float64 `bun:"wait_time" json:"wait_time"`
}
