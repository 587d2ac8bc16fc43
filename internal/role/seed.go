package role

import (
	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/models"
)

// The role set is closed: these five rows are the only ones that ever exist.
// There is no role CRUD — route gates and the dashboard table are written
// against these names.
var defaultRoles = []models.Role{
	{Name: "operateur", Description: "Déclare les pannes sur les machines"},
	{Name: "technicien", Description: "Exécute les interventions et les tâches de maintenance"},
	{Name: "magasinier", Description: "Gère le stock et les demandes de pièces"},
	{Name: "responsable", Description: "Planifie les interventions et les maintenances"},
	{Name: "admin", Description: "Administration complète"},
}

func SeedDefaultRoles() error {
	for _, r := range defaultRoles {
		var existing models.Role
		if err := database.DB.Where("name = ?", r.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := database.DB.Create(&r).Error; err != nil {
			return err
		}
	}
	return nil
}

// Names returns the closed role set, usable for validation.
func Names() []string {
	names := make([]string, 0, len(defaultRoles))
	for _, r := range defaultRoles {
		names = append(names, r.Name)
	}
	return names
}

// IsValid reports whether name belongs to the closed role set.
func IsValid(name string) bool {
	for _, r := range defaultRoles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// GetByName loads a seeded role row.
func GetByName(name string) (*models.Role, error) {
	var r models.Role
	if err := database.DB.Where("name = ?", name).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}
