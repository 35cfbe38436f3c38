// Package i18n holds the id/en message catalog.
package i18n

import (
	"context"
	"strings"
)

// Default is the site language.
const Default = "id"

var supported = map[string]bool{"id": true, "en": true}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool { return supported[lang] }

type langKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the stored language or Default.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(langKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if supported[base] {
			return base
		}
	}
	return Default
}

// T translates code. Unknown languages use Default; unknown codes are returned as is.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

var messages = map[string]map[string]string{
	"id": {
		"required":               "Wajib diisi",
		"invalid_email":          "Email tidak valid",
		"too_short":              "Terlalu pendek",
		"mismatch":               "Password tidak cocok",
		"password_too_short":     "Password minimal 6 karakter",
		"email_taken":            "Email sudah terdaftar",
		"invalid_credentials":    "Email atau password salah",
		"account_pending":        "Akun Anda masih menunggu persetujuan.",
		"account_rejected":       "Akun Anda telah dihapus aksesnya. Silahkan hubungi Departemen Kominfo untuk informasi lebih lanjut.",
		"account_suspended":      "Akun Anda telah dinonaktifkan. Silakan hubungi Departemen Kominfo untuk informasi lebih lanjut.",
		"account_not_approved":   "Akun Anda belum disetujui. Silakan tunggu persetujuan dari Superadmin.",
		"superadmin_suspended":   "Akun Anda telah dinonaktifkan. Silakan hubungi pemilik website.",
		"not_superadmin":         "Akses Ditolak: Anda bukan Superadmin.",
		"register_success":       "Pendaftaran Berhasil!",
		"register_success_hint":  "Akun Anda akan aktif setelah disetujui oleh Superadmin.",
		"title_required":         "Judul wajib diisi",
		"category_required":      "Kategori wajib dipilih",
		"date_required":          "Tanggal posting wajib diisi",
		"slug_taken":             "Slug sudah digunakan",
		"flash_article_saved":    "Artikel berhasil disimpan",
		"flash_article_deleted":  "Artikel berhasil dihapus",
		"flash_category_saved":   "Kategori berhasil disimpan",
		"flash_category_deleted": "Kategori berhasil dihapus",
		"flash_admin_created":    "Admin berhasil dibuat",
		"flash_admin_approved":   "Admin berhasil disetujui",
		"flash_admin_rejected":   "Akses admin berhasil dicabut",
		"flash_admin_deleted":    "Admin berhasil dihapus",
		"flash_password_reset":   "Password berhasil diubah",
		"flash_not_found":        "Data tidak ditemukan",
		"flash_error":            "Terjadi kesalahan, silakan coba lagi",
		"search_results":         "Hasil pencarian untuk:",
		"no_results":             "Tidak ada artikel ditemukan",
		"no_articles":            "Belum ada artikel",
		"not_found":              "Halaman tidak ditemukan",
		"internal_error":         "Terjadi kesalahan pada server",
		"nav_home":               "Beranda",
		"nav_search":             "Cari",
		"nav_dashboard":          "Dashboard",
		"nav_articles":           "Artikel",
		"nav_categories":         "Kategori",
		"nav_admins":             "Kelola Admin",
		"logout":                 "Keluar",
		"login":                  "Masuk",
		"login_admin":            "Login Admin",
		"login_superadmin":       "Login Superadmin",
		"register":               "Daftar",
		"register_admin":         "Daftar Admin",
		"full_name":              "Nama Lengkap",
		"email":                  "Email",
		"password":               "Password",
		"confirm_password":       "Konfirmasi Password",
		"save":                   "Simpan",
		"edit":                   "Ubah",
		"delete":                 "Hapus",
		"approve":                "Setujui",
		"reject":                 "Cabut Akses",
		"reset_password":         "Ubah Password",
		"create_admin":           "Tambah Admin",
		"new_article":            "Artikel Baru",
		"edit_article":           "Ubah Artikel",
		"new_category":           "Kategori Baru",
		"edit_category":          "Ubah Kategori",
		"title":                  "Judul",
		"slug":                   "Slug",
		"content":                "Konten",
		"category":               "Kategori",
		"description":            "Deskripsi",
		"icon":                   "Ikon",
		"published":              "Terbit",
		"draft":                  "Draf",
		"posting_auto":           "Tanggal otomatis",
		"posting_custom":         "Tanggal khusus",
		"related_links":          "Tautan terkait",
		"link_label":             "Label",
		"link_url":               "URL",
		"views":                  "Dilihat",
		"likes":                  "Suka",
		"dislikes":               "Tidak suka",
		"by":                     "oleh",
		"status":                 "Status",
		"status_pending":         "Menunggu",
		"status_approved":        "Disetujui",
		"status_rejected":        "Ditolak",
		"pending_admins":         "Menunggu Persetujuan",
		"all_admins":             "Semua Admin",
		"stat_admins":            "Admin",
		"stat_new_today":         "baru hari ini",
		"recent_articles":        "Artikel Terbaru",
		"recent_admins":          "Admin Terbaru",
		"no_pending":             "Tidak ada pendaftar baru",
		"confirm_delete":         "Yakin ingin menghapus?",
		"search_placeholder":     "Cari artikel...",
		"read_more":              "Baca selengkapnya",
		"back_to_login":          "Kembali ke login",
		"have_account":           "Sudah punya akun?",
		"no_account":             "Belum punya akun?",
	},
	"en": {
		"required":               "Required",
		"invalid_email":          "Invalid email",
		"too_short":              "Too short",
		"mismatch":               "Passwords do not match",
		"password_too_short":     "Password must be at least 6 characters",
		"email_taken":            "Email already registered",
		"invalid_credentials":    "Wrong email or password",
		"account_pending":        "Your account is awaiting approval.",
		"account_rejected":       "Your access has been revoked. Please contact the communications department.",
		"account_suspended":      "Your account has been suspended. Please contact the communications department.",
		"account_not_approved":   "Your account has not been approved yet. Please wait for a superadmin.",
		"superadmin_suspended":   "Your account has been suspended. Please contact the site owner.",
		"not_superadmin":         "Access denied: you are not a superadmin.",
		"register_success":       "Registration successful!",
		"register_success_hint":  "Your account becomes active once a superadmin approves it.",
		"title_required":         "Title is required",
		"category_required":      "Please choose a category",
		"date_required":          "Posting date is required",
		"slug_taken":             "Slug already in use",
		"flash_article_saved":    "Article saved",
		"flash_article_deleted":  "Article deleted",
		"flash_category_saved":   "Category saved",
		"flash_category_deleted": "Category deleted",
		"flash_admin_created":    "Admin created",
		"flash_admin_approved":   "Admin approved",
		"flash_admin_rejected":   "Admin access revoked",
		"flash_admin_deleted":    "Admin deleted",
		"flash_password_reset":   "Password changed",
		"flash_not_found":        "Not found",
		"flash_error":            "Something went wrong, please try again",
		"search_results":         "Search results for:",
		"no_results":             "No articles found",
		"no_articles":            "No articles yet",
		"not_found":              "Page not found",
		"internal_error":         "Internal server error",
		"nav_home":               "Home",
		"nav_search":             "Search",
		"nav_dashboard":          "Dashboard",
		"nav_articles":           "Articles",
		"nav_categories":         "Categories",
		"nav_admins":             "Manage admins",
		"logout":                 "Sign out",
		"login":                  "Sign in",
		"login_admin":            "Admin sign in",
		"login_superadmin":       "Superadmin sign in",
		"register":               "Register",
		"register_admin":         "Admin registration",
		"full_name":              "Full name",
		"email":                  "Email",
		"password":               "Password",
		"confirm_password":       "Confirm password",
		"save":                   "Save",
		"edit":                   "Edit",
		"delete":                 "Delete",
		"approve":                "Approve",
		"reject":                 "Revoke access",
		"reset_password":         "Change password",
		"create_admin":           "Add admin",
		"new_article":            "New article",
		"edit_article":           "Edit article",
		"new_category":           "New category",
		"edit_category":          "Edit category",
		"title":                  "Title",
		"slug":                   "Slug",
		"content":                "Content",
		"category":               "Category",
		"description":            "Description",
		"icon":                   "Icon",
		"published":              "Published",
		"draft":                  "Draft",
		"posting_auto":           "Automatic date",
		"posting_custom":         "Custom date",
		"related_links":          "Related links",
		"link_label":             "Label",
		"link_url":               "URL",
		"views":                  "Views",
		"likes":                  "Likes",
		"dislikes":               "Dislikes",
		"by":                     "by",
		"status":                 "Status",
		"status_pending":         "Pending",
		"status_approved":        "Approved",
		"status_rejected":        "Rejected",
		"pending_admins":         "Awaiting approval",
		"all_admins":             "All admins",
		"stat_admins":            "Admins",
		"stat_new_today":         "new today",
		"recent_articles":        "Recent articles",
		"recent_admins":          "Recent admins",
		"no_pending":             "No pending registrations",
		"confirm_delete":         "Delete this item?",
		"search_placeholder":     "Search articles...",
		"read_more":              "Read more",
		"back_to_login":          "Back to sign in",
		"have_account":           "Already have an account?",
		"no_account":             "No account yet?",
	},
}
