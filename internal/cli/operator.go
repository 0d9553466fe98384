package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	"github.com/BruksfildServices01/institute-scheduler/internal/validators"
)

func init() {
	rootCmd.AddCommand(createOperatorCmd)

	createOperatorCmd.Flags().String("name", "", "Operator display name")
	createOperatorCmd.Flags().String("email", "", "Login e-mail")
	createOperatorCmd.Flags().String("password", "", "Login password (min 8 chars)")
	createOperatorCmd.Flags().String("phone", "", "Phone number")
	_ = createOperatorCmd.MarkFlagRequired("email")
	_ = createOperatorCmd.MarkFlagRequired("password")
}

var createOperatorCmd = &cobra.Command{
	Use:   "create-operator",
	Short: "Create an operator account or promote an existing client",
	RunE:  runCreateOperator,
}

func runCreateOperator(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	phone, _ := cmd.Flags().GetString("phone")

	email = strings.ToLower(strings.TrimSpace(email))
	if !validators.IsEmailFormatValid(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	if len(password) < 8 {
		return errors.New("password must have at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, db := openDB()

	var client models.Client
	err = db.Where("email = ?", email).First(&client).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if name == "" {
			name = email
		}
		client = models.Client{
			Name:         name,
			Email:        email,
			Phone:        validators.NormalizePhone(phone),
			PasswordHash: string(hash),
			Role:         models.RoleOperator,
		}
		if err := db.Create(&client).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		client.Role = models.RoleOperator
		client.PasswordHash = string(hash)
		if name != "" {
			client.Name = name
		}
		if phone != "" {
			client.Phone = validators.NormalizePhone(phone)
		}
		if err := db.Save(&client).Error; err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "operator %s (%s) ready\n", client.Email, client.ID)
	return nil
}
