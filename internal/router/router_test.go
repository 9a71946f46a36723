package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ipnow2025/medinote/internal/domain/familyshare"
	"github.com/ipnow2025/medinote/internal/router"
)

func TestHTTP_EndToEnd_MedicationSchedule(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"
	today := time.Now().Format("2006-01-02")

	// 1) Registrar medicamento con horarios recomendados
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":             "혈압약",
		"dosage":           "5mg",
		"frequency":        "1일 2회",
		"start_date":       "2020-01-01",
		"category":         "고혈압",
		"reminder_enabled": true,
	})

	// 2) El día tiene 2 tomas pendientes
	{
		st, body := doReq(t, ts.URL, "GET", "/schedule/daily?date="+today, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 daily schedule, got %d body=%s", st, string(body))
		}
		var instances []struct {
			ScheduledTime string `json:"scheduled_time"`
			Ordinal       int    `json:"ordinal"`
			Completed     bool   `json:"completed"`
		}
		_ = json.Unmarshal(body, &instances)
		if len(instances) != 2 {
			t.Fatalf("expected 2 instances, got %d body=%s", len(instances), string(body))
		}
		if instances[0].ScheduledTime != "08:00" || instances[1].ScheduledTime != "20:00" {
			t.Fatalf("expected default times 08:00/20:00, got %s/%s",
				instances[0].ScheduledTime, instances[1].ScheduledTime)
		}
		if instances[0].Completed || instances[1].Completed {
			t.Fatalf("expected pending instances")
		}
	}

	// 3) Completar la primera toma
	{
		st, body := doReq(t, ts.URL, "POST", "/schedule/daily/complete", userID, map[string]any{
			"medication_id": medID,
			"date":          today,
			"ordinal":       0,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
		var inst struct {
			Completed   bool    `json:"completed"`
			CompletedAt *string `json:"completed_at"`
		}
		_ = json.Unmarshal(body, &inst)
		if !inst.Completed || inst.CompletedAt == nil {
			t.Fatalf("expected completed with timestamp, body=%s", string(body))
		}
	}

	// 4) Resumen del día: 1/2
	{
		st, body := doReq(t, ts.URL, "GET", "/reports/today?date="+today, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 today summary, got %d body=%s", st, string(body))
		}
		var sum struct {
			Completed int     `json:"completed"`
			Total     int     `json:"total"`
			Rate      float64 `json:"rate"`
			NoDoses   bool    `json:"no_doses"`
		}
		_ = json.Unmarshal(body, &sum)
		if sum.Completed != 1 || sum.Total != 2 || sum.Rate != 0.5 || sum.NoDoses {
			t.Fatalf("expected 1/2 rate 0.5, got %+v", sum)
		}
	}

	// 5) Deshacer: toggle de nuevo
	{
		st, body := doReq(t, ts.URL, "POST", "/schedule/daily/complete", userID, map[string]any{
			"medication_id": medID,
			"date":          today,
			"ordinal":       0,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 undo, got %d body=%s", st, string(body))
		}
		var inst struct {
			Completed bool `json:"completed"`
		}
		_ = json.Unmarshal(body, &inst)
		if inst.Completed {
			t.Fatalf("expected uncompleted after undo")
		}
	}

	// 6) El historial conserva la entrada original (deshacer no borra)
	{
		st, body := doReq(t, ts.URL, "GET", "/reports/history", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 history, got %d body=%s", st, string(body))
		}
		var entries []struct {
			MedicationID string `json:"medication_id"`
			Skipped      bool   `json:"skipped"`
		}
		_ = json.Unmarshal(body, &entries)
		if len(entries) != 1 {
			t.Fatalf("expected 1 history entry after undo, got %d body=%s", len(entries), string(body))
		}
	}

	// 7) Saltar la segunda toma con nota
	{
		st, body := doReq(t, ts.URL, "POST", "/schedule/daily/skip", userID, map[string]any{
			"medication_id": medID,
			"date":          today,
			"ordinal":       1,
			"notes":         "속이 안 좋아서",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 skip, got %d body=%s", st, string(body))
		}
	}

	// 8) Clave inexistente => 404
	{
		st, _ := doReq(t, ts.URL, "POST", "/schedule/daily/complete", userID, map[string]any{
			"medication_id": medID,
			"date":          today,
			"ordinal":       9,
		})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown ordinal, got %d", st)
		}
	}

	// 9) Sin auth => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}
}

func TestHTTP_MedicationUpdate_FrequencyChange(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":             "혈압약",
		"dosage":           "5mg",
		"frequency":        "1일 2회",
		"start_date":       "2026-01-01",
		"reminder_enabled": true,
		"reminder_times":   []string{"09:30", "22:00"},
	})

	st, body := doReq(t, ts.URL, "PATCH", "/medications/"+medID, userID, map[string]any{
		"frequency": "1일 3회",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
	}

	var resp struct {
		FrequencyCount int      `json:"frequency_count"`
		ReminderTimes  []string `json:"reminder_times"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.FrequencyCount != 3 {
		t.Fatalf("expected frequency_count 3, got %d", resp.FrequencyCount)
	}
	want := []string{"08:00", "13:00", "19:00"}
	if len(resp.ReminderTimes) != 3 {
		t.Fatalf("expected recommended times %v, got %v", want, resp.ReminderTimes)
	}
	for i := range want {
		if resp.ReminderTimes[i] != want[i] {
			t.Fatalf("expected recommended times %v, got %v", want, resp.ReminderTimes)
		}
	}

	// frecuencia inválida => 400
	st, _ = doReq(t, ts.URL, "PATCH", "/medications/"+medID, userID, map[string]any{
		"frequency": "1일 9회",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid frequency, got %d", st)
	}
}

func TestHTTP_MedicationUpdate_NullClearsEndDate(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":       "항생제",
		"dosage":     "250mg",
		"frequency":  "1일 1회",
		"start_date": "2026-01-01",
		"end_date":   "2026-06-30",
	})

	// PATCH sin end_date no lo toca
	{
		st, body := doReq(t, ts.URL, "PATCH", "/medications/"+medID, userID, map[string]any{
			"dosage": "500mg",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
		var resp struct {
			EndDate string `json:"end_date"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.EndDate != "2026-06-30" {
			t.Fatalf("absent end_date must not touch the value, got %q", resp.EndDate)
		}
	}

	// "end_date": null vuelve el medicamento a ventana abierta
	{
		st, body := doReq(t, ts.URL, "PATCH", "/medications/"+medID, userID, map[string]any{
			"end_date": nil,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch null, got %d body=%s", st, string(body))
		}
		var resp struct {
			EndDate string `json:"end_date"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.EndDate != "" {
			t.Fatalf("expected end_date cleared by null, got %q", resp.EndDate)
		}
	}

	// y se puede volver a fijar
	{
		st, body := doReq(t, ts.URL, "PATCH", "/medications/"+medID, userID, map[string]any{
			"end_date": "2026-09-30",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
		var resp struct {
			EndDate string `json:"end_date"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.EndDate != "2026-09-30" {
			t.Fatalf("expected end_date set again, got %q", resp.EndDate)
		}
	}
}

func TestHTTP_Skip_ReminderDisabledMedication(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"
	today := time.Now().Format("2006-01-02")

	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":             "철분제",
		"dosage":           "1정",
		"frequency":        "1일 1회",
		"start_date":       "2020-01-01",
		"reminder_enabled": false,
	})

	// sin recordatorios no hay instancias del día...
	{
		st, body := doReq(t, ts.URL, "GET", "/schedule/daily?date="+today, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 daily, got %d body=%s", st, string(body))
		}
		var instances []struct{}
		_ = json.Unmarshal(body, &instances)
		if len(instances) != 0 {
			t.Fatalf("expected no generated instances, got %d", len(instances))
		}
	}

	// ...pero el registro manual con ordinal 0 funciona
	{
		st, body := doReq(t, ts.URL, "POST", "/schedule/daily/skip", userID, map[string]any{
			"medication_id": medID,
			"date":          today,
			"ordinal":       0,
			"notes":         "오늘은 쉼",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 skip for reminder-off medication, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/schedule/daily/complete", userID, map[string]any{
			"medication_id": medID,
			"date":          today,
			"ordinal":       0,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 ad hoc complete, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_ExportCSV(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"
	createMedication(t, ts.URL, userID, map[string]any{
		"name":       "혈압약",
		"dosage":     "5mg",
		"frequency":  "1일 2회",
		"start_date": "2026-01-01",
		"end_date":   "2026-03-01",
		"category":   "고혈압",
	})

	req, _ := http.NewRequest("GET", ts.URL+"/medications/export", nil)
	req.Header.Set("X-Debug-User-ID", userID)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 export, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv, got %s", ct)
	}

	raw, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "약품명,복용량,복용빈도,시작일,종료일,상태,카테고리,메모" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	fields := strings.Split(lines[1], ",")
	if len(fields) != 8 {
		t.Fatalf("expected 8 columns, got %d: %s", len(fields), lines[1])
	}
	if fields[0] != "혈압약" || fields[5] != "복용중" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestHTTP_FamilyShare_Flow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	familyID := "family-1"
	today := time.Now().Format("2006-01-02")

	createMedication(t, ts.URL, ownerID, map[string]any{
		"name":             "혈압약",
		"dosage":           "5mg",
		"frequency":        "1일 1회",
		"start_date":       "2020-01-01",
		"reminder_enabled": true,
	})

	// 1) Sin grant el familiar no ve nada
	{
		st, _ := doReq(t, ts.URL, "GET", "/share/"+ownerID+"/medications", familyID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before grant, got %d", st)
		}
	}

	// 2) El dueño invita
	grantID := inviteGrant(t, ts.URL, ownerID, familyID, []string{
		string(familyshare.ScopeMedsRead),
		string(familyshare.ScopeAdhRead),
	})

	// 3) Invitado aún no activo => sigue 403
	{
		st, _ := doReq(t, ts.URL, "GET", "/share/"+ownerID+"/medications", familyID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 while still invited, got %d", st)
		}
	}

	// 4) El familiar ve su invitación y acepta
	{
		st, body := doReq(t, ts.URL, "GET", "/me/invites", familyID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 my invites, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/share/invites/"+grantID+"/accept", familyID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
		}
	}

	// 5) Ya puede ver los medicamentos y el resumen del dueño
	{
		st, body := doReq(t, ts.URL, "GET", "/share/"+ownerID+"/medications", familyID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 shared medications, got %d body=%s", st, string(body))
		}
		var meds []struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(body, &meds)
		if len(meds) != 1 || meds[0].Name != "혈압약" {
			t.Fatalf("unexpected shared list: %s", string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/share/"+ownerID+"/reports/today?date="+today, familyID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 shared summary, got %d body=%s", st, string(body))
		}
	}

	// 6) El dueño revoca y el acceso se corta de inmediato
	{
		st, body := doReq(t, ts.URL, "POST", "/share/invites/"+grantID+"/revoke", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/share/"+ownerID+"/medications", familyID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after revoke, got %d", st)
		}
	}
}

func TestHTTP_InviteRejectsUnknownScope(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "POST", "/share/invites", "owner-1", map[string]any{
		"grantee_user_id": "family-1",
		"scopes":          []string{"meds:read", "meds:unknown"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", st)
	}
}

func TestHTTP_LoginNotConfigured(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
		"id":       "member",
		"password": "secret",
	})
	if st != http.StatusNotImplemented {
		t.Fatalf("expected 501 without authenticator, got %d", st)
	}
}

func createMedication(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func inviteGrant(t *testing.T, baseURL, ownerID, granteeID string, scopes []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/share/invites", ownerID, map[string]any{
		"grantee_user_id": granteeID,
		"relationship":    "배우자",
		"scopes":          scopes,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("invite: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}
