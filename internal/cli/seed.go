package cli

import (
	"fmt"
	"log"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	"github.com/BruksfildServices01/institute-scheduler/internal/validators"
)

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Int("clients", 50, "Number of fake clients to create")
}

// Catálogo base do instituto. Categorias batem com o arquivo de fidelidade.
var seedServices = []models.Service{
	{Slug: "soin-visage-eclat", Name: "Soin visage éclat", Category: "facial", DurationMin: 60, Price: decimal.NewFromInt(75), Order: 1},
	{Slug: "hydrafacial-signature", Name: "Hydrafacial signature", Category: "hydrafacial", DurationMin: 60, Price: decimal.NewFromInt(140), Order: 2},
	{Slug: "hydrafacial-platinum", Name: "Hydrafacial platinum", Category: "hydrafacial", DurationMin: 90, Price: decimal.NewFromInt(190), Order: 3},
	{Slug: "microneedling", Name: "Microneedling", Category: "microneedling", DurationMin: 75, Price: decimal.NewFromInt(160), Order: 4},
	{Slug: "bb-glow", Name: "BB Glow", Category: "bbglow", DurationMin: 90, Price: decimal.NewFromInt(120), Order: 5},
	{Slug: "seance-led", Name: "Séance LED", Category: "led", DurationMin: 30, Price: decimal.NewFromInt(40), Order: 6},
	{Slug: "combine-hydra-led", Name: "Combiné hydrafacial + LED", Category: "combiné", DurationMin: 120, Price: decimal.NewFromInt(210), Order: 7},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the service catalog and fake clients for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("clients")

		_, db := openDB()

		if err := seedCatalog(db); err != nil {
			return fmt.Errorf("seed services: %w", err)
		}
		if err := seedClients(db, count); err != nil {
			return fmt.Errorf("seed clients: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
		return nil
	},
}

func seedCatalog(db *gorm.DB) error {
	log.Printf("seeding %d services", len(seedServices))

	for _, s := range seedServices {
		s.Active = true
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&s).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedClients(db *gorm.DB, count int) error {
	log.Printf("seeding %d clients", count)

	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		batch := make([]models.Client, 0, end-offset)
		for i := offset; i < end; i++ {
			batch = append(batch, models.Client{
				Name:  gofakeit.Name(),
				Email: strings.ToLower(gofakeit.Email()),
				Phone: validators.NormalizePhone("06" + gofakeit.Numerify("########")),
				Role:  models.RoleClient,
			})
		}

		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error; err != nil {
			return err
		}
		log.Printf("clients seeded: %d/%d", end, count)
	}
	return nil
}
