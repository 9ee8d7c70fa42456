package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-gateway/internal/domain"
	"github.com/jhoicas/invoice-gateway/pkg/jwt"
)

// tokenResponse salida de invoicectl token.
type tokenResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// newTokenCmd emite un Bearer token firmado con JWT_SECRET para llamar a /api.
// El gateway no guarda usuarios: quien tiene el secret decide identidad y rol.
func newTokenCmd(services servicesFunc) *cobra.Command {
	var userID, role string
	var expMinutes int
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Genera un JWT para la API HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID = strings.TrimSpace(userID)
			if userID == "" {
				return fmt.Errorf("%w: --user es obligatorio", domain.ErrInvalidInput)
			}
			if !slices.Contains([]string{jwt.RoleAdmin, jwt.RoleEditor, jwt.RoleViewer}, role) {
				return fmt.Errorf("%w: rol %q (admin|editor|viewer)", domain.ErrInvalidInput, role)
			}
			svc, done, err := services(cmd)
			if err != nil {
				return err
			}
			defer done()

			if expMinutes <= 0 {
				expMinutes = svc.JWT.Expiration
			}
			tok, err := jwt.Generate(svc.JWT.Secret, userID, role, svc.JWT.Issuer, expMinutes)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tokenResponse{
				Token:     tok,
				UserID:    userID,
				Role:      role,
				ExpiresAt: time.Now().Add(time.Duration(expMinutes) * time.Minute).UTC().Truncate(time.Second),
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "identificador del usuario (claim user_id)")
	cmd.Flags().StringVar(&role, "role", jwt.RoleViewer, "rol: admin, editor o viewer")
	cmd.Flags().IntVar(&expMinutes, "exp", 0, "minutos de validez (por defecto JWT_EXPIRATION_MINUTES)")
	return cmd
}
