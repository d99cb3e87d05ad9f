package engine

import (
	"regexp"

	"github.com/hashicorp/go-version"

	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/rlog"
)

// checkFirmware extracts a version token from the post-handshake
// identification header using the model's FirmwarePattern and compares it
// against MinFirmware. A mismatch is logged, never fatal — neither can be
// verified before the transfer has already happened.
func checkFirmware(model descriptor.Model, header []byte, logger rlog.Logger) {
	if model.MinFirmware == "" || model.FirmwarePattern == "" || len(header) == 0 {
		return
	}
	re, err := regexp.Compile(model.FirmwarePattern)
	if err != nil {
		logger.Error("firmware pattern %q for %s %s does not compile: %v", model.FirmwarePattern, model.Vendor, model.Model, err)
		return
	}
	match := re.FindString(string(header))
	if match == "" {
		logger.Debug("no firmware token found in identification header for %s %s", model.Vendor, model.Model)
		return
	}
	current, err := version.NewVersion(match)
	if err != nil {
		return
	}
	minimum, err := version.NewVersion(model.MinFirmware)
	if err != nil {
		return
	}
	if current.LessThan(minimum) {
		logger.Info("radio reports firmware %s, below the %s %s minimum tested %s",
			current, model.Vendor, model.Model, minimum)
	}
}
