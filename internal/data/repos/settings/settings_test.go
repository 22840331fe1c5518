package settings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
)

func TestUserSettingRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserSettingRepo(db, testutil.Logger(t))
	owner := uuid.New()

	if row, err := repo.Get(dbc, owner, "snapToGrid"); err != nil || row != nil {
		t.Fatalf("Get missing: want=nil got=%v err=%v", row, err)
	}
	if err := repo.Upsert(dbc, &types.UserSetting{OwnerUserID: owner, Key: "snapToGrid", Value: types.SettingValue(`true`)}); err != nil {
		t.Fatalf("Upsert #1: %v", err)
	}
	if err := repo.Upsert(dbc, &types.UserSetting{OwnerUserID: owner, Key: "snapToGrid", Value: types.SettingValue(`false`), UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("Upsert #2: %v", err)
	}
	if err := repo.Upsert(dbc, &types.UserSetting{OwnerUserID: owner, Key: "defaultTimeScale", Value: types.SettingValue(`45`)}); err != nil {
		t.Fatalf("Upsert #3: %v", err)
	}

	row, err := repo.Get(dbc, owner, "snapToGrid")
	if err != nil || row == nil {
		t.Fatalf("Get: err=%v row=%v", err, row)
	}
	if string(row.Value) != "false" {
		t.Fatalf("Get value: want=false got=%s", string(row.Value))
	}

	all, err := repo.List(dbc, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Key != "defaultTimeScale" || all[1].Key != "snapToGrid" {
		t.Fatalf("List: unexpected rows %v", all)
	}
	if string(all[0].Value) != "45" {
		t.Fatalf("numeric value: want=45 got=%s", string(all[0].Value))
	}
}

func TestUserSettingScalarValuesRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewUserSettingRepo(db, testutil.Logger(t))
	owner := uuid.New()

	for key, raw := range map[string]string{
		"timeline_scale_minutes": `30`,
		"zoom":                   `1.5`,
		"offset":                 `-2`,
		"snapToGrid":             `true`,
		"label":                  `"45"`,
		"ids":                    `[1,2]`,
	} {
		if err := repo.Upsert(dbc, &types.UserSetting{OwnerUserID: owner, Key: key, Value: types.SettingValue(raw)}); err != nil {
			t.Fatalf("Upsert %s: %v", key, err)
		}
		row, err := repo.Get(dbc, owner, key)
		if err != nil || row == nil {
			t.Fatalf("Get %s: err=%v row=%v", key, err, row)
		}
		if string(row.Value) != raw {
			t.Fatalf("%s: want=%s got=%s", key, raw, string(row.Value))
		}
	}
}

func TestAPIKeyRepoUpsertDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewAPIKeyRepo(db, testutil.Logger(t))
	owner := uuid.New()

	if err := repo.Upsert(dbc, &types.APIKey{OwnerUserID: owner, Provider: "chatgpt", SealedKey: []byte("one"), Hint: "sk-…0001"}); err != nil {
		t.Fatalf("Upsert #1: %v", err)
	}
	if err := repo.Upsert(dbc, &types.APIKey{OwnerUserID: owner, Provider: "chatgpt", SealedKey: []byte("two"), Hint: "sk-…0002"}); err != nil {
		t.Fatalf("Upsert #2: %v", err)
	}
	row, err := repo.Get(dbc, owner, "chatgpt")
	if err != nil || row == nil {
		t.Fatalf("Get: err=%v row=%v", err, row)
	}
	if string(row.SealedKey) != "two" || row.Hint != "sk-…0002" {
		t.Fatalf("Get after upsert: key=%q hint=%q", row.SealedKey, row.Hint)
	}
	list, err := repo.List(dbc, owner)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: err=%v rows=%d", err, len(list))
	}

	if ok, err := repo.Delete(dbc, owner, "chatgpt"); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.Delete(dbc, owner, "chatgpt"); err != nil || ok {
		t.Fatalf("Delete twice: ok=%v err=%v", ok, err)
	}
}
