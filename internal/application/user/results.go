package user

import (
	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/user"
)

// Result - result операции с одним пользователем
type Result struct {
	appcore.Result[*user.User]
}

func newResult(u *user.User) Result {
	return Result{Result: appcore.Result[*user.User]{Value: u, Version: u.Version()}}
}
