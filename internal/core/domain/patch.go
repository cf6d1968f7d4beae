package domain

import "strings"

// AccountPatch describes a selective account update. A nil field preserves
// the stored value; a present field overwrites it after trimming. Fields that
// trim to the empty string are treated as absent, so a patch can never clear
// a stored value to empty.
type AccountPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Password  *string
}

// EmailValue returns the patch email lowercased and trimmed, and whether the
// patch carries a usable email at all.
func (p AccountPatch) EmailValue() (string, bool) {
	if p.Email == nil {
		return "", false
	}
	email := strings.ToLower(strings.TrimSpace(*p.Email))
	if email == "" {
		return "", false
	}
	return email, true
}

// PasswordValue returns the plaintext password carried by the patch, and
// whether it is present and non-blank. Blank passwords are never applied.
func (p AccountPatch) PasswordValue() (string, bool) {
	if p.Password == nil {
		return "", false
	}
	password := strings.TrimSpace(*p.Password)
	if password == "" {
		return "", false
	}
	return password, true
}

// Apply merges the patch into current and returns the updated account.
// The password is not merged here: it must be hashed first and supplied as
// hashedPassword, where the empty string keeps the stored hash.
func (p AccountPatch) Apply(current Account, hashedPassword string) Account {
	updated := current

	if value, ok := trimmedValue(p.FirstName); ok {
		updated.FirstName = value
	}
	if value, ok := trimmedValue(p.LastName); ok {
		updated.LastName = value
	}
	if value, ok := trimmedValue(p.Phone); ok {
		updated.Phone = value
	}
	if email, ok := p.EmailValue(); ok {
		updated.Email = email
	}
	if hashedPassword != "" {
		updated.PasswordHash = hashedPassword
	}

	return updated
}

// ProfilePatch describes a selective profile update with the same merge
// semantics as AccountPatch.
type ProfilePatch struct {
	Headline   *string
	Bio        *string
	City       *string
	Country    *string
	PictureRef *string
}

// Apply merges the patch into current and returns the updated profile.
func (p ProfilePatch) Apply(current Profile) Profile {
	updated := current

	if value, ok := trimmedValue(p.Headline); ok {
		updated.Headline = value
	}
	if value, ok := trimmedValue(p.Bio); ok {
		updated.Bio = value
	}
	if value, ok := trimmedValue(p.City); ok {
		updated.City = value
	}
	if value, ok := trimmedValue(p.Country); ok {
		updated.Country = value
	}
	if value, ok := trimmedValue(p.PictureRef); ok {
		updated.PictureRef = value
	}

	return updated
}

func trimmedValue(field *string) (string, bool) {
	if field == nil {
		return "", false
	}
	value := strings.TrimSpace(*field)
	if value == "" {
		return "", false
	}
	return value, true
}
