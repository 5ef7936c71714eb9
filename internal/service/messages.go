package service

import "fmt"

// Message is the user-facing summary of the result, in Spanish.
func (r *Result) Message() string {
	switch r.Outcome {
	case OutcomeLocationNotFound:
		return "No se pudo encontrar la ubicación. Por favor, verifica la dirección e intenta nuevamente."
	case OutcomeRegionNotFound:
		return "No se encontró la región para esta ubicación. Asegúrate de ingresar una dirección en Chile."
	case OutcomeNoDeposits:
		return fmt.Sprintf("No se encontraron relaves registrados en la %s.", r.Region.Name)
	case OutcomeFound:
		return fmt.Sprintf("En la %s se registran %d relaves, que corresponde a un %.2f%% del catastro nacional",
			r.Region.Name, r.RegionCount, r.RegionShare)
	default:
		return ""
	}
}

// LocationMessage confirms the geocoded coordinates, or is empty when there are none.
func (r *Result) LocationMessage() string {
	if r.Location == nil {
		return ""
	}

	return fmt.Sprintf("📍 Ubicación encontrada: %.5f, %.5f", r.Location.Latitude, r.Location.Longitude)
}
