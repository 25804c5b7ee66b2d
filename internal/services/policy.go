package services

import (
	"github.com/msaimsawaid/music/internal/models"
)

// CanMutateAlbum is the single place deciding whether user may update or
// delete album: the owner may, and so may an admin. Ownership compares the
// raw ids.
func CanMutateAlbum(user *models.User, album *models.Album) bool {
	if user == nil || album == nil {
		return false
	}
	return album.CreatedBy == user.ID || user.Role == models.RoleAdmin
}
