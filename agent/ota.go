package agent

// ResultCode is the outcome of a firmware update attempt, reported back
// to the controller.
type ResultCode uint8

const (
	ResultFailed   ResultCode = 0
	ResultUpToDate ResultCode = 1
	ResultApplied  ResultCode = 2
)

// Updater is the firmware update collaborator. Connect brings up the
// updater's own network path when the session is disconnected; Update
// runs the transfer and returns its outcome; Reboot restarts the device
// into the new firmware.
type Updater interface {
	Connect() error
	Update() (ResultCode, error)
	Reboot()
}
