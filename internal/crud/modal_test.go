package crud

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModalFromRequest(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want ModalState
	}{
		{"closed", "/admin/produits", ModalState{}},
		{"add", "/admin/produits?modal=add", ModalState{Kind: ModalAdd}},
		{"add ignores target", "/admin/produits?modal=add&target=7", ModalState{Kind: ModalAdd}},
		{"edit", "/admin/produits?modal=edit&target=7", ModalState{Kind: ModalEdit, TargetID: "7"}},
		{"delete", "/admin/produits?modal=delete&target=7", ModalState{Kind: ModalDelete, TargetID: "7"}},
		{"detail", "/admin/produits?modal=detail&target=7", ModalState{Kind: ModalDetail, TargetID: "7"}},
		{"edit without target collapses", "/admin/produits?modal=edit", ModalState{}},
		{"unknown kind collapses", "/admin/produits?modal=wizard&target=7", ModalState{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.url, nil)
			assert.Equal(t, tc.want, ModalFromRequest(req))
		})
	}
}

func TestModalStatePredicates(t *testing.T) {
	assert.False(t, ModalState{}.IsOpen())
	assert.True(t, ModalState{Kind: ModalAdd}.IsOpen())

	assert.False(t, ModalState{Kind: ModalAdd}.NeedsTarget())
	assert.True(t, ModalState{Kind: ModalEdit}.NeedsTarget())
	assert.True(t, ModalState{Kind: ModalDelete}.NeedsTarget())
	assert.True(t, ModalState{Kind: ModalDetail}.NeedsTarget())
}

func TestModalStateURL(t *testing.T) {
	assert.Equal(t, "/admin/produits", ModalState{}.URL("/admin/produits"))
	assert.Equal(t, "/admin/produits?modal=add", ModalState{Kind: ModalAdd}.URL("/admin/produits"))
	assert.Equal(t,
		"/admin/produits?page=2&modal=edit&target=7",
		ModalState{Kind: ModalEdit, TargetID: "7"}.URL("/admin/produits?page=2"))
}

func TestTargetIDsAreEscapedInURLs(t *testing.T) {
	// Identifiers are numeric pks today, but nothing in the schema layer
	// requires that.
	assert.Equal(t,
		"/admin/produits?modal=detail&target=a%2Fb+c",
		ModalState{Kind: ModalDetail, TargetID: "a/b c"}.URL("/admin/produits"))

	assert.Equal(t, "/admin/produits/a%2Fb%20c", recordPath("/admin/produits", "a/b c"))
	assert.Equal(t, "/admin/produits/7", recordPath("/admin/produits", "7"))
}
