package db

import (
	"errors"
	"testing"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/config"
	"github.com/diewo77/go-cms/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)
	b := config.BootstrapConfig{SuperadminEmail: "Root@Example.org", SuperadminPassword: "rahasia", SuperadminName: "Root"}

	if err := Seed(d, b); err != nil {
		t.Fatal(err)
	}
	b.SuperadminPassword = "changed"
	if err := Seed(d, b); err != nil {
		t.Fatal(err)
	}

	var users, cats int64
	d.Model(&models.User{}).Count(&users)
	d.Model(&models.Category{}).Count(&cats)
	if users != 1 || cats != 1 {
		t.Fatalf("expected 1 user and 1 category, got %d and %d", users, cats)
	}

	var u models.User
	d.Preload("Profile").Where("email = ?", "root@example.org").First(&u)
	if u.Profile == nil || u.Profile.Role != access.RoleSuperadmin || u.Profile.Status != access.StatusApproved {
		t.Fatalf("unexpected profile %+v", u.Profile)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("rahasia")) != nil {
		t.Fatalf("existing password must be kept")
	}
}

func TestSeedPromotesExistingAccount(t *testing.T) {
	d := openTestDB(t)
	u := models.User{Email: "root@example.org", Password: "x"}
	if err := d.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	if err := SeedSuperadmin(d, config.BootstrapConfig{SuperadminEmail: "root@example.org", SuperadminPassword: "x"}); err != nil {
		t.Fatal(err)
	}
	var p models.Profile
	d.First(&p, "id = ?", u.ID)
	if p.Role != access.RoleSuperadmin || p.Status != access.StatusApproved {
		t.Fatalf("profile not promoted: %+v", p)
	}
}

func TestSeedWithoutBootstrapAccount(t *testing.T) {
	d := openTestDB(t)
	if err := SeedSuperadmin(d, config.BootstrapConfig{}); !errors.Is(err, ErrNoBootstrapAccount) {
		t.Fatalf("expected ErrNoBootstrapAccount, got %v", err)
	}
}

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"":                                       "",
		"  'postgres://u:p@h:5432/db'  ":         "postgres://u:p@h:5432/db",
		"host=h   user=u dbname=d":               "host=h user=u dbname=d sslmode=disable",
		"host=h user=u dbname=d sslmode=require": "host=h user=u dbname=d sslmode=require",
		"file:cms.db":                            "file:cms.db",
	}
	for in, want := range cases {
		if got := NormalizeDSN(in); got != want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", in, got, want)
		}
	}
}
