package service_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/repository"
	"github.com/goliatone/go-crudform/pkg/service"
	"github.com/goliatone/go-crudform/pkg/testsupport"
)

type entry struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func seeded(n int) []entry {
	out := make([]entry, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, entry{Name: fmt.Sprintf("e%d", i), Value: i})
	}
	return out
}

func newService(t *testing.T, session *testsupport.Session[entry]) *service.CRUDService[entry] {
	t.Helper()
	repo, err := repository.New[entry](session)
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	svc, err := service.New[entry](repo, nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func names(items []entry) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestGetItems_Windows(t *testing.T) {
	svc := newService(t, testsupport.NewSession(seeded(25)...))

	cases := []struct {
		name        string
		skip, limit int
		want        []string
	}{
		{"defaults", 0, 0, []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8", "e9", "e10"}},
		{"middle", 10, 5, []string{"e11", "e12", "e13", "e14", "e15"}},
		{"tail", 20, 10, []string{"e21", "e22", "e23", "e24", "e25"}},
		{"past end", 25, 10, []string{}},
		{"negative skip", -3, 2, []string{"e1", "e2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := svc.GetItems(context.Background(), tc.skip, tc.limit)
			if err != nil {
				t.Fatalf("get items: %v", err)
			}
			if diff := cmp.Diff(tc.want, names(items)); diff != "" {
				t.Fatalf("window mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetItems_WrapsRepositoryError(t *testing.T) {
	session := testsupport.NewSession[entry]()
	session.Faults.All = driver.ErrBadConn
	svc := newService(t, session)

	_, err := svc.GetItems(context.Background(), 0, 10)
	if !errors.Is(err, repository.ErrConnection) {
		t.Fatalf("expected connection failure, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "error retrieving items: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCreateItem(t *testing.T) {
	session := testsupport.NewSession[entry]()
	svc := newService(t, session)

	created, err := svc.CreateItem(context.Background(), &entry{Name: "new", Value: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected generated id")
	}

	session.Faults.Commit = errors.New("disk quota")
	_, err = svc.CreateItem(context.Background(), &entry{Name: "lost"})
	if !errors.Is(err, repository.ErrCommit) {
		t.Fatalf("expected commit failure, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "error creating item: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestGetItem(t *testing.T) {
	svc := newService(t, testsupport.NewSession(seeded(2)...))

	got, err := svc.GetItem(context.Background(), 2)
	if err != nil || got == nil || got.Name != "e2" {
		t.Fatalf("expected e2, got %+v (%v)", got, err)
	}
	missing, err := svc.GetItem(context.Background(), 42)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing id, got %+v (%v)", missing, err)
	}
}

func TestUpdateItem_AppliesPatch(t *testing.T) {
	session := testsupport.NewSession(seeded(1)...)
	svc := newService(t, session)

	updated, err := svc.UpdateItem(context.Background(), 1, model.Patch{"value": 99})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := []entry{{ID: 1, Name: "e1", Value: 99}}
	if diff := cmp.Diff(want[0], *updated); diff != "" {
		t.Fatalf("updated mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, session.Rows()); diff != "" {
		t.Fatalf("stored mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateItem_MissingIsNoop(t *testing.T) {
	session := testsupport.NewSession(seeded(1)...)
	svc := newService(t, session)

	got, err := svc.UpdateItem(context.Background(), 7, model.Patch{"value": 1})
	if err != nil || got != nil {
		t.Fatalf("expected nil result, got %+v (%v)", got, err)
	}
	if session.Calls.Begin != 0 {
		t.Fatalf("expected no transaction, got %d", session.Calls.Begin)
	}
}

func TestUpdateItem_RejectsUnknownField(t *testing.T) {
	session := testsupport.NewSession(seeded(1)...)
	svc := newService(t, session)

	_, err := svc.UpdateItem(context.Background(), 1, model.Patch{"nmae": "typo"})
	if !model.IsValidationFailure(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if session.Calls.Begin != 0 {
		t.Fatalf("expected no transaction for rejected patch")
	}
	if diff := cmp.Diff(seededWithIDs(1), session.Rows()); diff != "" {
		t.Fatalf("stored mismatch (-want +got):\n%s", diff)
	}
}

func seededWithIDs(n int) []entry {
	out := seeded(n)
	for i := range out {
		out[i].ID = uint(i + 1)
	}
	return out
}

func TestDeleteItem(t *testing.T) {
	session := testsupport.NewSession(seeded(2)...)
	svc := newService(t, session)

	deleted, err := svc.DeleteItem(context.Background(), 1)
	if err != nil || deleted == nil || deleted.Name != "e1" {
		t.Fatalf("expected e1 deleted, got %+v (%v)", deleted, err)
	}
	missing, err := svc.DeleteItem(context.Background(), 1)
	if err != nil || missing != nil {
		t.Fatalf("expected nil on second delete, got %+v (%v)", missing, err)
	}
	if diff := cmp.Diff([]string{"e2"}, names(session.Rows())); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RequiresRepository(t *testing.T) {
	if _, err := service.New[entry](nil, nil); err == nil {
		t.Fatalf("expected error for nil repository")
	}
}
