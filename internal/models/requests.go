package models

import (
	"fmt"
	"strings"

	"purifier-app/routine-service/internal/utils"
)

// DeviceRegistration — входной запрос регистрации устройства.
type DeviceRegistration struct {
	DeviceID  string   `json:"device_id" validate:"required,min=4"`
	OwnerID   string   `json:"owner_id"  validate:"required"`
	Name      string   `json:"name"      validate:"required"`
	CityName  string   `json:"city_name" validate:"required"`
	Latitude  *float64 `json:"latitude,omitempty"  validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	FCMToken  string   `json:"fcm_token,omitempty"`
}

func (in DeviceRegistration) Validate() error {
	if err := utils.GetValidator().Struct(in); err != nil {
		errs := utils.ParseErrors(err)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, " // "))
	}
	return nil
}

// DeviceRelocation — запрос смены расположения устройства.
type DeviceRelocation struct {
	CityName  string   `json:"city_name" validate:"required"`
	Latitude  *float64 `json:"latitude,omitempty"  validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

func (in DeviceRelocation) Validate() error {
	if err := utils.GetValidator().Struct(in); err != nil {
		errs := utils.ParseErrors(err)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, " // "))
	}
	return nil
}
