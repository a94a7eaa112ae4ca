package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/database"
	"icarus-bknd/internal/models"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

const ProfileUpdatedMessage = "Profile updated successfully."

type ProfileService struct {
	db   *bun.DB
	logr *zap.Logger
}

func NewProfileService(db *bun.DB, logr *zap.Logger) *ProfileService {
	return &ProfileService{db: db, logr: logr}
}

// IDRef points at a catalog row by id.
type IDRef struct {
	ID int64 `json:"id"`
}

// NullableFloat tells an explicit null apart from an absent key.
type NullableFloat struct {
	Set   bool
	Value *float64
}

func (n *NullableFloat) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type AddressInput struct {
	Address                string   `json:"address"`
	Latitude               *float64 `json:"latitude"`
	Longitude              *float64 `json:"longitude"`
	Phone                  *string  `json:"phone"`
	Fax                    *string  `json:"fax"`
	IsWheelchairAccessible bool     `json:"is_wheelchair_accessible"`
	IsAcceptingNewPatients bool     `json:"is_accepting_new_patients"`
	StartHour              *string  `json:"start_hour"`
	EndHour                *string  `json:"end_hour"`
}

type WaitTimeInput struct {
	Procedure *string  `json:"procedure"`
	WaitTime  *float64 `json:"wait_time"`
}

// ProviderUpdate is a partial provider profile. Nil fields are left untouched;
// non-nil collections replace the stored set.
type ProviderUpdate struct {
	Specialty                      *IDRef           `json:"specialty"`
	SubspecialtyOrSpecialInterests *string          `json:"subspecialty_or_special_interests"`
	ServicesProvided               *string          `json:"services_provided"`
	ServicesNotProvided            *string          `json:"services_not_provided"`
	EducationAndQualifications     *string          `json:"education_and_qualifications"`
	ResearchInterests              *string          `json:"research_interests"`
	ConsultationWait               NullableFloat    `json:"consultation_wait"`
	ReferralInstructions           *string          `json:"referral_instructions"`
	Languages                      *[]IDRef         `json:"languages"`
	Designations                   *[]IDRef         `json:"designations"`
	Addresses                      *[]AddressInput  `json:"addresses"`
	ProceduralWaitTimes            *[]WaitTimeInput `json:"procedural_wait_times"`
}

// GetProfile returns any account's public profile.
func (s *ProfileService) GetProfile(ctx context.Context, userUUID string) (*models.User, error) {
	var u models.User
	err := database.WithProfile(s.db.NewSelect().Model(&u)).
		Where("u.uuid = ?", userUUID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("User Not Found")
		}
		return nil, apperrors.StoreUnavailable("could not load profile", err)
	}
	return &u, nil
}

func (s *ProfileService) GetUserType(ctx context.Context, userUUID string) (*int, error) {
	var u models.User
	err := s.db.NewSelect().Model(&u).Column("id", "user_type").Where("u.uuid = ?", userUUID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("User Not Found")
		}
		return nil, apperrors.StoreUnavailable("could not load user type", err)
	}
	return u.UserType, nil
}

// SetUserType changes the caller's account class and creates the matching provider or admin row.
func (s *ProfileService) SetUserType(ctx context.Context, callerUUID, targetUUID string, userType *int) (int, error) {
	if err := ensureOwner(callerUUID, targetUUID); err != nil {
		return 0, err
	}
	if userType == nil {
		return 0, apperrors.InvalidCriteria("user_type", "No user type supplied")
	}
	t := *userType
	if t < models.UserTypePublicProvider || t > models.UserTypeAdmin {
		return 0, apperrors.InvalidCriteria("user_type", "Invalid user type")
	}

	u, err := s.loadAccount(ctx, targetUUID)
	if err != nil {
		return 0, err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if models.IsProviderType(t) {
			if _, err := tx.NewInsert().Model(&models.Provider{UserID: u.ID}).On("CONFLICT (user_id) DO NOTHING").Exec(ctx); err != nil {
				return err
			}
		} else {
			if _, err := tx.NewInsert().Model(&models.Admin{UserID: u.ID}).On("CONFLICT (user_id) DO NOTHING").Exec(ctx); err != nil {
				return err
			}
			u.IsInitialSetupComplete = true
		}

		u.UserType = &t
		_, err := tx.NewUpdate().Model(u).Column("user_type", "is_initial_setup_complete").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return 0, apperrors.StoreUnavailable("could not update user type", err)
	}

	s.logr.Info("user type changed", zap.String("user_uuid", targetUUID), zap.Int("user_type", t))
	return t, nil
}

// UpdateProvider applies upd to the target's provider profile in one transaction.
// Sub-collections present in upd are deleted and re-inserted, never merged.
func (s *ProfileService) UpdateProvider(ctx context.Context, callerUUID, targetUUID string, upd *ProviderUpdate) error {
	if err := ensureOwner(callerUUID, targetUUID); err != nil {
		return err
	}
	if upd == nil {
		return nil
	}

	addresses, err := buildAddresses(upd.Addresses)
	if err != nil {
		return err
	}

	u, err := s.loadAccount(ctx, targetUUID)
	if err != nil {
		return err
	}
	if u.Provider == nil {
		return apperrors.InvalidCriteria("provider", "Choose a healthcare provider account type before editing a provider profile.")
	}
	prov := u.Provider
	userID := u.ID

	columns := applyScalars(prov, upd)

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(columns) > 0 {
			if _, err := tx.NewUpdate().Model(prov).Column(columns...).WherePK().Exec(ctx); err != nil {
				return err
			}
		}

		if upd.Languages != nil {
			rows := make([]models.ProviderToLanguage, 0, len(*upd.Languages))
			for _, l := range *upd.Languages {
				rows = append(rows, models.ProviderToLanguage{ProviderID: userID, LanguageID: l.ID})
			}
			if err := replaceRows(ctx, tx, (*models.ProviderToLanguage)(nil), "provider_id", userID, &rows, len(rows)); err != nil {
				return err
			}
		}

		if upd.Designations != nil {
			rows := make([]models.ProviderToDesignation, 0, len(*upd.Designations))
			for _, d := range *upd.Designations {
				rows = append(rows, models.ProviderToDesignation{ProviderID: userID, DesignationID: d.ID})
			}
			if err := replaceRows(ctx, tx, (*models.ProviderToDesignation)(nil), "provider_id", userID, &rows, len(rows)); err != nil {
				return err
			}
		}

		if upd.Addresses != nil {
			for _, a := range addresses {
				a.UserID = userID
			}
			if err := replaceRows(ctx, tx, (*models.Address)(nil), "user_id", userID, &addresses, len(addresses)); err != nil {
				return err
			}
		}

		if upd.ProceduralWaitTimes != nil {
			rows := make([]*models.ProceduralWaitTime, 0, len(*upd.ProceduralWaitTimes))
			for _, w := range *upd.ProceduralWaitTimes {
				rows = append(rows, &models.ProceduralWaitTime{UserID: userID, Procedure: w.Procedure, WaitTime: w.WaitTime})
			}
			if err := replaceRows(ctx, tx, (*models.ProceduralWaitTime)(nil), "user_id", userID, &rows, len(rows)); err != nil {
				return err
			}
		}

		if len(addresses) > 0 && !u.IsInitialSetupComplete {
			if _, err := tx.NewUpdate().Model((*models.User)(nil)).
				Set("is_initial_setup_complete = true").
				Where("id = ?", userID).
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isIntegrityViolation(err) {
			return apperrors.InvalidCriteria("provider", "The profile references an unknown specialty, language or designation.")
		}
		return apperrors.StoreUnavailable("could not update profile", err)
	}

	s.logr.Info("provider profile updated", zap.String("user_uuid", targetUUID), zap.Strings("columns", columns))
	return nil
}

// DeleteAccount removes the account; provider rows, addresses and associations cascade.
func (s *ProfileService) DeleteAccount(ctx context.Context, callerUUID, targetUUID string) error {
	if err := ensureOwner(callerUUID, targetUUID); err != nil {
		return err
	}

	res, err := s.db.NewDelete().Model((*models.User)(nil)).Where("uuid = ?", targetUUID).Exec(ctx)
	if err != nil {
		return apperrors.StoreUnavailable("could not delete account", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("User Not Found")
	}

	s.logr.Info("account deleted", zap.String("user_uuid", targetUUID))
	return nil
}

func (s *ProfileService) loadAccount(ctx context.Context, userUUID string) (*models.User, error) {
	var u models.User
	err := s.db.NewSelect().Model(&u).Relation("Provider").Where("u.uuid = ?", userUUID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("User Not Found")
		}
		return nil, apperrors.StoreUnavailable("could not load account", err)
	}
	return &u, nil
}

// replaceRows deletes the owner's rows of model and inserts rows when n > 0.
func replaceRows(ctx context.Context, tx bun.Tx, model interface{}, ownerColumn string, ownerID int64, rows interface{}, n int) error {
	if _, err := tx.NewDelete().Model(model).Where("? = ?", bun.Ident(ownerColumn), ownerID).Exec(ctx); err != nil {
		return fmt.Errorf("delete %s rows: %w", ownerColumn, err)
	}
	if n == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	return nil
}

// applyScalars copies the set fields of upd onto prov and returns the changed columns.
func applyScalars(prov *models.Provider, upd *ProviderUpdate) []string {
	var cols []string
	setStr := func(dst **string, src *string, col string) {
		if src != nil {
			*dst = src
			cols = append(cols, col)
		}
	}

	if upd.Specialty != nil {
		id := upd.Specialty.ID
		prov.SpecialtyID = &id
		cols = append(cols, "specialty_id")
	}
	setStr(&prov.SubspecialtyOrSpecialInterests, upd.SubspecialtyOrSpecialInterests, "subspecialty_or_special_interests")
	setStr(&prov.ServicesProvided, upd.ServicesProvided, "services_provided")
	setStr(&prov.ServicesNotProvided, upd.ServicesNotProvided, "services_not_provided")
	setStr(&prov.EducationAndQualifications, upd.EducationAndQualifications, "education_and_qualifications")
	setStr(&prov.ResearchInterests, upd.ResearchInterests, "research_interests")
	setStr(&prov.ReferralInstructions, upd.ReferralInstructions, "referral_instructions")
	if upd.ConsultationWait.Set {
		prov.ConsultationWait = upd.ConsultationWait.Value
		cols = append(cols, "consultation_wait")
	}
	return cols
}

func buildAddresses(in *[]AddressInput) ([]*models.Address, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]*models.Address, 0, len(*in))
	for i, a := range *in {
		field := fmt.Sprintf("addresses[%d]", i)
		if a.Latitude == nil || a.Longitude == nil {
			return nil, apperrors.InvalidCriteria(field, "latitude and longitude are required")
		}
		p := models.Point{Latitude: *a.Latitude, Longitude: *a.Longitude}
		if !p.Valid() {
			return nil, apperrors.InvalidCriteria(field, "latitude must be within [-90, 90] and longitude within [-180, 180]")
		}
		start, err := normalizeHour(a.StartHour)
		if err != nil {
			return nil, apperrors.InvalidCriteria(field+".start_hour", "hours must look like HH:MM")
		}
		end, err := normalizeHour(a.EndHour)
		if err != nil {
			return nil, apperrors.InvalidCriteria(field+".end_hour", "hours must look like HH:MM")
		}
		out = append(out, &models.Address{
			Address:                strings.TrimSpace(a.Address),
			Latitude:               p.Latitude,
			Longitude:              p.Longitude,
			Phone:                  a.Phone,
			Fax:                    a.Fax,
			IsWheelchairAccessible: a.IsWheelchairAccessible,
			IsAcceptingNewPatients: a.IsAcceptingNewPatients,
			StartHour:              start,
			EndHour:                end,
		})
	}
	return out, nil
}

// normalizeHour accepts HH:MM or HH:MM:SS and returns HH:MM.
func normalizeHour(h *string) (*string, error) {
	if h == nil || strings.TrimSpace(*h) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*h)
	t, err := time.Parse("15:04", v)
	if err != nil {
		t, err = time.Parse("15:04:05", v)
		if err != nil {
			return nil, err
		}
	}
	out := t.Format("15:04")
	return &out, nil
}

func ensureOwner(callerUUID, targetUUID string) error {
	if callerUUID == "" || !strings.EqualFold(callerUUID, targetUUID) {
		return apperrors.Forbidden("You do not have permission to edit this profile.")
	}
	return nil
}
