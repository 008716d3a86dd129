// internal/provision/redirect_test.go
package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/sriox/platform/internal/resource"
)

func seedRedirect(h *harness, accountID int64, name, target string) *resource.Redirect {
	r := &resource.Redirect{Name: name, TargetURL: target, AccountID: accountID}
	if err := h.store.CreateRedirect(context.Background(), r); err != nil {
		panic(err)
	}
	h.pages.files[name] = target
	return r
}

func TestCreateRedirect_Success(t *testing.T) {
	h := newHarness()

	red, err := h.svc.CreateRedirect(context.Background(), 1, "docs", "https://example.com/docs")
	if err != nil {
		t.Fatalf("CreateRedirect: %v", err)
	}
	if red.ID == 0 {
		t.Fatal("expected assigned ID")
	}
	if h.pages.files["docs"] != "https://example.com/docs" {
		t.Fatalf("page files = %v", h.pages.files)
	}
	if len(h.dns.creates) != 0 {
		t.Fatal("redirects must not touch DNS")
	}
}

func TestCreateRedirect_QuotaRejectedBeforePageWrite(t *testing.T) {
	h := newHarness()
	seedRedirect(h, 1, "a", "https://example.com/a")
	seedRedirect(h, 1, "b", "https://example.com/b")

	_, err := h.svc.CreateRedirect(context.Background(), 1, "c", "https://example.com/c")
	if !errors.Is(err, resource.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	if _, ok := h.pages.files["c"]; ok {
		t.Fatal("quota rejection must precede the page write")
	}
}

func TestCreateRedirect_BadTargetURL(t *testing.T) {
	h := newHarness()

	_, err := h.svc.CreateRedirect(context.Background(), 1, "docs", "ftp://example.com")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(h.pages.files) != 0 {
		t.Fatal("no page may be written for an invalid target")
	}
}

func TestCreateRedirect_NameTaken(t *testing.T) {
	h := newHarness()
	seedRedirect(h, 2, "docs", "https://example.com/docs")

	_, err := h.svc.CreateRedirect(context.Background(), 1, "docs", "https://example.com/other")
	if !errors.Is(err, resource.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCreateRedirect_InsertRaceRemovesPage(t *testing.T) {
	h := newHarness()
	h.store.failCreateRedirect = resource.ErrConflict

	_, err := h.svc.CreateRedirect(context.Background(), 1, "docs", "https://example.com/docs")
	if !errors.Is(err, resource.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if _, ok := h.pages.files["docs"]; ok {
		t.Fatal("page must be compensated away after the insert loses")
	}
}

func TestUpdateRedirect_TargetOnly(t *testing.T) {
	h := newHarness()
	r := seedRedirect(h, 1, "docs", "https://example.com/v1")

	got, err := h.svc.UpdateRedirect(context.Background(), 1, r.ID, "docs", "https://example.com/v2")
	if err != nil {
		t.Fatalf("UpdateRedirect: %v", err)
	}
	if got.TargetURL != "https://example.com/v2" {
		t.Fatalf("target = %q", got.TargetURL)
	}
	if h.pages.files["docs"] != "https://example.com/v2" {
		t.Fatalf("page files = %v", h.pages.files)
	}
}

func TestUpdateRedirect_NoChangeIsNoOp(t *testing.T) {
	h := newHarness()
	r := seedRedirect(h, 1, "docs", "https://example.com/docs")

	got, err := h.svc.UpdateRedirect(context.Background(), 1, r.ID, "docs", "https://example.com/docs")
	if err != nil {
		t.Fatalf("UpdateRedirect: %v", err)
	}
	if got.Name != "docs" {
		t.Fatalf("name = %q", got.Name)
	}
}

func TestUpdateRedirect_RenameMovesPage(t *testing.T) {
	h := newHarness()
	r := seedRedirect(h, 1, "docs", "https://example.com/docs")

	got, err := h.svc.UpdateRedirect(context.Background(), 1, r.ID, "guide", "https://example.com/docs")
	if err != nil {
		t.Fatalf("UpdateRedirect: %v", err)
	}
	if got.Name != "guide" {
		t.Fatalf("name = %q", got.Name)
	}
	if _, ok := h.pages.files["docs"]; ok {
		t.Fatal("old page must be removed")
	}
	if h.pages.files["guide"] != "https://example.com/docs" {
		t.Fatalf("page files = %v", h.pages.files)
	}
}

func TestUpdateRedirect_RowFailureRestoresPages(t *testing.T) {
	h := newHarness()
	r := seedRedirect(h, 1, "docs", "https://example.com/docs")
	h.store.failUpdateRedirect = errors.New("db gone")

	_, err := h.svc.UpdateRedirect(context.Background(), 1, r.ID, "guide", "https://example.com/docs")
	if err == nil {
		t.Fatal("expected error")
	}
	if h.pages.files["docs"] != "https://example.com/docs" {
		t.Fatal("old page must be restored")
	}
	if _, ok := h.pages.files["guide"]; ok {
		t.Fatal("new page must be compensated away")
	}
	stored, _ := h.store.RedirectByID(context.Background(), r.ID, 1)
	if stored.Name != "docs" {
		t.Fatalf("stored name = %q, want docs", stored.Name)
	}
}

func TestDeleteRedirect_Success(t *testing.T) {
	h := newHarness()
	r := seedRedirect(h, 1, "docs", "https://example.com/docs")

	if err := h.svc.DeleteRedirect(context.Background(), 1, r.ID); err != nil {
		t.Fatalf("DeleteRedirect: %v", err)
	}
	if _, ok := h.pages.files["docs"]; ok {
		t.Fatal("page must be gone")
	}
	if _, err := h.store.RedirectByID(context.Background(), r.ID, 1); !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("row lookup after delete: %v", err)
	}
}

func TestDeleteRedirect_NotOwned(t *testing.T) {
	h := newHarness()
	r := seedRedirect(h, 1, "docs", "https://example.com/docs")

	err := h.svc.DeleteRedirect(context.Background(), 2, r.ID)
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, ok := h.pages.files["docs"]; !ok {
		t.Fatal("another account's page must be untouched")
	}
}
