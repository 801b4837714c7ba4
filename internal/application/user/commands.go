package user

// RegisterUserCommand - registration after the first identity provider login
type RegisterUserCommand struct {
	SubjectID   string
	Email       string
	DisplayName string
}

// UpdateProfileCommand - nil fields are left untouched
type UpdateProfileCommand struct {
	SubjectID   string
	DisplayName *string
	Bio         *string
	Habits      *string
}

// UpdatePhotoCommand - смена фото профиля
type UpdatePhotoCommand struct {
	SubjectID string
	PhotoURL  string
}

// GetProfileQuery - профиль текущего пользователя
type GetProfileQuery struct {
	SubjectID string
}
