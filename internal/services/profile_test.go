package services

import (
	"context"
	"encoding/json"
	"testing"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const otherUUID = "9d1c2b3a-4e5f-4a6b-8c7d-1e2f3a4b5c6d"

func newProfileFixture(t *testing.T) (*ProfileService, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewProfileService(database.Wrap(sqlDB), zap.NewNop()), mock
}

func decodeUpdate(t *testing.T, body string) *ProviderUpdate {
	t.Helper()
	var upd ProviderUpdate
	require.NoError(t, json.Unmarshal([]byte(body), &upd))
	return &upd
}

func expectProviderAccount(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM "users" AS "u"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "is_initial_setup_complete", "provider__user_id"}).
			AddRow(5, testUUID, true, 5))
}

func TestProviderUpdate_DecodesPresenceAndNulls(t *testing.T) {
	upd := decodeUpdate(t, `{"consultation_wait": null, "procedural_wait_times": [], "services_provided": "ECG"}`)

	assert.True(t, upd.ConsultationWait.Set)
	assert.Nil(t, upd.ConsultationWait.Value)
	require.NotNil(t, upd.ProceduralWaitTimes)
	assert.Empty(t, *upd.ProceduralWaitTimes)
	assert.Nil(t, upd.Languages)
	assert.Equal(t, "ECG", *upd.ServicesProvided)

	upd = decodeUpdate(t, `{"consultation_wait": 4.5}`)
	require.NotNil(t, upd.ConsultationWait.Value)
	assert.Equal(t, 4.5, *upd.ConsultationWait.Value)

	upd = decodeUpdate(t, `{}`)
	assert.False(t, upd.ConsultationWait.Set)
}

func TestUpdateProvider_OnlyOwner(t *testing.T) {
	svc, mock := newProfileFixture(t)

	err := svc.UpdateProvider(context.Background(), otherUUID, testUUID, decodeUpdate(t, `{"services_provided": "x"}`))

	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProvider_ValidatesAddresses(t *testing.T) {
	svc, mock := newProfileFixture(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"latitude out of range", `{"addresses": [{"latitude": 95, "longitude": 10}]}`, "addresses[0]"},
		{"missing longitude", `{"addresses": [{"latitude": 45}]}`, "addresses[0]"},
		{"bad hours", `{"addresses": [{"latitude": 45, "longitude": 10}, {"latitude": 45, "longitude": 10, "start_hour": "9am"}]}`, "addresses[1].start_hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateProvider(context.Background(), testUUID, testUUID, decodeUpdate(t, tt.body))

			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidCriteria))
			_, field := apperrors.PublicMessage(err)
			assert.Equal(t, tt.field, field)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProvider_ReplacesCollectionsInOneTransaction(t *testing.T) {
	svc, mock := newProfileFixture(t)
	expectProviderAccount(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "providers" .*SET "consultation_wait" = 2\.5`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "providers_to_languages" .*"provider_id" = 5`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "providers_to_languages" .*VALUES \(5, 3\), \(5, 4\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "procedural_wait_times" .*"user_id" = 5`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.UpdateProvider(context.Background(), testUUID, testUUID, decodeUpdate(t,
		`{"consultation_wait": 2.5, "languages": [{"id": 3}, {"id": 4}], "procedural_wait_times": []}`))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProvider_RollsBackOnFailure(t *testing.T) {
	svc, mock := newProfileFixture(t)
	expectProviderAccount(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "providers_to_designations"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := svc.UpdateProvider(context.Background(), testUUID, testUUID, decodeUpdate(t, `{"designations": [{"id": 1}]}`))

	assert.True(t, apperrors.Is(err, apperrors.KindStoreUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProvider_RequiresProviderAccount(t *testing.T) {
	svc, mock := newProfileFixture(t)
	mock.ExpectQuery(`FROM "users" AS "u"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid"}).AddRow(5, testUUID))

	err := svc.UpdateProvider(context.Background(), testUUID, testUUID, decodeUpdate(t, `{"services_provided": "x"}`))

	assert.True(t, apperrors.Is(err, apperrors.KindInvalidCriteria))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProvider_UnknownUser(t *testing.T) {
	svc, mock := newProfileFixture(t)
	mock.ExpectQuery(`FROM "users" AS "u"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.UpdateProvider(context.Background(), testUUID, testUUID, decodeUpdate(t, `{}`))

	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestSetUserType_Validation(t *testing.T) {
	svc, mock := newProfileFixture(t)
	seven := 7

	_, err := svc.SetUserType(context.Background(), testUUID, testUUID, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidCriteria))

	_, err = svc.SetUserType(context.Background(), testUUID, testUUID, &seven)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidCriteria))

	zero := 0
	_, err = svc.SetUserType(context.Background(), otherUUID, testUUID, &zero)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUserType_AdminCompletesSetup(t *testing.T) {
	svc, mock := newProfileFixture(t)
	mock.ExpectQuery(`FROM "users" AS "u"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid"}).AddRow(5, testUUID))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "admins" .*ON CONFLICT \(user_id\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" .*"user_type" = 3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	admin := 3
	got, err := svc.SetUserType(context.Background(), testUUID, testUUID, &admin)

	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount(t *testing.T) {
	svc, mock := newProfileFixture(t)

	assert.True(t, apperrors.Is(svc.DeleteAccount(context.Background(), otherUUID, testUUID), apperrors.KindForbidden))

	mock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, apperrors.Is(svc.DeleteAccount(context.Background(), testUUID, testUUID), apperrors.KindNotFound))

	mock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, svc.DeleteAccount(context.Background(), testUUID, testUUID))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeHour(t *testing.T) {
	s := func(v string) *string { return &v }

	got, err := normalizeHour(s("09:30:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:30", *got)

	got, err = normalizeHour(s(" "))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = normalizeHour(s("25:00"))
	assert.Error(t, err)
}
