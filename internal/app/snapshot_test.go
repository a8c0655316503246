package app

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/kanban/internal/domain"
)

func sampleWorkspace(t *testing.T) domain.Workspace {
	t.Helper()
	editor := newTestEditor(t)
	todo, _ := editor.AddBoard("Todo", "things to do")
	done, _ := editor.AddBoard("Done", "")
	due := time.Date(2025, 2, 1, 17, 30, 0, 0, time.UTC)
	c1, _ := editor.AddCard(todo.ID, domain.CardInput{
		Name:        "Write release notes",
		Description: "line one\nline two",
		Priority:    domain.PriorityHigh,
		Due:         &due,
		Tags:        []string{"docs", "Release"},
		Comments:    []string{"started"},
	})
	_, _ = editor.AddCard(todo.ID, domain.CardInput{Name: "Plain"})
	if err := editor.SetCardStatus(todo.ID, c1.ID, domain.StatusComplete); err != nil {
		t.Fatalf("SetCardStatus() error = %v", err)
	}
	if err := editor.MoveCardBetweenBoards(todo.ID, 0, done.ID, 0); err != nil {
		t.Fatalf("MoveCardBetweenBoards() error = %v", err)
	}
	return editor.Snapshot()
}

func TestSaveRoundTrip(t *testing.T) {
	ws := sampleWorkspace(t)
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	for _, format := range domain.AllDateTimeFormats() {
		data, err := EncodeSave(ws, format, now)
		if err != nil {
			t.Fatalf("EncodeSave(%s) error = %v", format, err)
		}
		save, err := DecodeSave(data, format)
		if err != nil {
			t.Fatalf("DecodeSave(%s) error = %v", format, err)
		}
		assertSameWorkspace(t, save.Workspace, ws)
		for bi := range ws.Boards {
			for ci, want := range ws.Boards[bi].Cards {
				got := save.Workspace.Boards[bi].Cards[ci]
				if !got.Created.Equal(want.Created) || !got.Modified.Equal(want.Modified) {
					t.Fatalf("%s: timestamps drifted got=%v/%v want=%v/%v", format, got.Created, got.Modified, want.Created, want.Modified)
				}
				if (got.Completed == nil) != (want.Completed == nil) {
					t.Fatalf("%s: completed mismatch got=%v want=%v", format, got.Completed, want.Completed)
				}
			}
		}
		if save.Version != KanbanVersion || !save.ExportedAt.Equal(now) {
			t.Fatalf("unexpected header %q %v", save.Version, save.ExportedAt)
		}
	}
}

func TestEncodeSaveFields(t *testing.T) {
	ws := sampleWorkspace(t)
	data, err := EncodeSave(ws, domain.DayMonthYear, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EncodeSave() error = %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if raw["export_date"] != "04-03-2025" {
		t.Fatalf("unexpected export_date %v", raw["export_date"])
	}
	text := string(data)
	for _, want := range []string{`"card_status": "Complete"`, `"priority": "High"`, `"date_due": "01/02/2025-17:30:00"`, `"date_completed": "Not Set"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("save missing %s:\n%s", want, text)
		}
	}
}

func TestDecodeSaveRejectsBadFiles(t *testing.T) {
	ws := sampleWorkspace(t)
	data, err := EncodeSave(ws, domain.DayMonthYearTime, time.Now())
	if err != nil {
		t.Fatalf("EncodeSave() error = %v", err)
	}
	var file SaveFile
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*SaveFile)
		want   error
	}{
		{
			name:   "duplicate board id",
			mutate: func(f *SaveFile) { f.Boards[1].ID = f.Boards[0].ID },
			want:   domain.ErrDuplicateBoardID,
		},
		{
			name: "duplicate card id",
			mutate: func(f *SaveFile) {
				f.Boards[0].Cards = append(f.Boards[0].Cards, f.Boards[0].Cards[0])
			},
			want: domain.ErrDuplicateCardID,
		},
		{
			name:   "unknown status",
			mutate: func(f *SaveFile) { f.Boards[0].Cards[0].CardStatus = "Blocked" },
			want:   domain.ErrInvalidStatus,
		},
		{
			name:   "unknown priority",
			mutate: func(f *SaveFile) { f.Boards[0].Cards[0].Priority = "Urgent" },
			want:   domain.ErrInvalidPriority,
		},
		{
			name:   "bad date",
			mutate: func(f *SaveFile) { f.Boards[0].Cards[0].DateDue = "tomorrow" },
			want:   domain.ErrInvalidDate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var copyFile SaveFile
			raw, _ := json.Marshal(file)
			_ = json.Unmarshal(raw, &copyFile)
			tc.mutate(&copyFile)
			bad, _ := json.Marshal(copyFile)
			if _, err := DecodeSave(bad, domain.DayMonthYearTime); !errors.Is(err, tc.want) {
				t.Fatalf("DecodeSave() error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := DecodeSave([]byte("{not json"), domain.DayMonthYear); !errors.Is(err, domain.ErrInputValidation) {
		t.Fatalf("expected ErrInputValidation for malformed json, got %v", err)
	}
}

func TestDecodeSaveToleratesUnknownKeys(t *testing.T) {
	raw := `{"kanban_version":"0.1.0","export_date":"01-01-2025","extra":true,"boards":[
	 {"id":[1,2],"name":"B","description":"","cards":[
	  {"id":[3,4],"name":"C","description":"","date_created":"01/01/2025-10:00:00","date_modified":"Not Set",
	   "date_due":"Not Set","date_completed":"Not Set","priority":"low","card_status":"complete","tags":[],"comments":[],"color":"red"}]}]}`
	save, err := DecodeSave([]byte(raw), domain.DayMonthYearTime)
	if err != nil {
		t.Fatalf("DecodeSave() error = %v", err)
	}
	card := save.Workspace.Boards[0].Cards[0]
	if card.Status != domain.StatusComplete || card.Completed == nil {
		t.Fatalf("expected completed card, got status=%q completed=%v", card.Status, card.Completed)
	}
	if card.Modified.Before(card.Created) {
		t.Fatalf("modified %v before created %v", card.Modified, card.Created)
	}
	if save.ExportedAt.IsZero() {
		t.Fatal("expected export date parsed from export_date")
	}
}

// TestDecodeSaveUsesRecordedDateFormat verifies a date format change between
// saving and loading never swaps day and month.
func TestDecodeSaveUsesRecordedDateFormat(t *testing.T) {
	ws := sampleWorkspace(t)
	data, err := EncodeSave(ws, domain.DayMonthYear, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EncodeSave() error = %v", err)
	}
	if !strings.Contains(string(data), `"date_format": "DayMonthYearTime"`) {
		t.Fatalf("save does not record its date format:\n%s", data)
	}
	for _, loadFormat := range []domain.DateTimeFormat{domain.MonthDayYear, domain.MonthDayYearTime, domain.YearMonthDay} {
		save, err := DecodeSave(data, loadFormat)
		if err != nil {
			t.Fatalf("DecodeSave(%s) error = %v", loadFormat, err)
		}
		for bi := range ws.Boards {
			for ci, want := range ws.Boards[bi].Cards {
				got := save.Workspace.Boards[bi].Cards[ci]
				if (got.Due == nil) != (want.Due == nil) || (got.Due != nil && !got.Due.Equal(*want.Due)) {
					t.Fatalf("%s: due got=%v want=%v", loadFormat, got.Due, want.Due)
				}
				if !got.Created.Equal(want.Created) || !got.Modified.Equal(want.Modified) {
					t.Fatalf("%s: timestamps got=%v/%v want=%v/%v", loadFormat, got.Created, got.Modified, want.Created, want.Modified)
				}
				if (got.Completed == nil) != (want.Completed == nil) || (got.Completed != nil && !got.Completed.Equal(*want.Completed)) {
					t.Fatalf("%s: completed got=%v want=%v", loadFormat, got.Completed, want.Completed)
				}
			}
		}
	}
}

func TestDecodeSaveRecordedFormatIsStrict(t *testing.T) {
	raw := `{"kanban_version":"0.4.0","export_date":"01-01-2025","date_format":"DayMonthYearTime","boards":[
	 {"id":[1,2],"name":"B","description":"","cards":[
	  {"id":[3,4],"name":"C","description":"","date_created":"2025/01/02-10:00:00","date_modified":"Not Set",
	   "date_due":"Not Set","date_completed":"Not Set","priority":"Low","card_status":"Active","tags":[],"comments":[]}]}]}`
	if _, err := DecodeSave([]byte(raw), domain.YearMonthDayTime); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("DecodeSave() error = %v, want ErrInvalidDate", err)
	}
	bad := strings.Replace(raw, `"DayMonthYearTime"`, `"Lunar"`, 1)
	if _, err := DecodeSave([]byte(bad), domain.DayMonthYearTime); !errors.Is(err, domain.ErrInputValidation) {
		t.Fatalf("DecodeSave(unknown format) error = %v, want ErrInputValidation", err)
	}
}
