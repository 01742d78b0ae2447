package model

// MachineTypes is the predefined machine-type catalog. Machines may carry
// types outside this list, but the dashboard only reports on these five.
var MachineTypes = []string{"Overlock", "Galoneira", "Travetadeira", "Reta", "Interlock"}

// Problems is the predefined problem catalog offered by the intake forms.
// Free-text problems are still accepted and stored.
var Problems = []string{
	"Agulha quebrada",
	"Barulho estranho",
	"Motor não liga",
	"Ponto irregular",
	"Manutenção preventiva",
	"Alimentação de tecido irregular",
}
