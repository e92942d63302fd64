// Package log provides logging that keeps patient identifiers out of log
// output, built on top of the standard slog package.
//
// Reports are rendered per patient, and the natural thing to log about a
// report is the patient it belongs to. Log files however end up in CI
// artifacts, tickets and chat, where those identifiers must not appear.
//
// # Redaction
//
// The RedactingHandler masks attribute values that identify a patient:
//   - Values logged under identifying keys (subject, patient, patient_id, mrn, dob)
//   - Values under any key containing "patient"
//   - Values that look like medical record numbers
//
// Groups are redacted recursively. Sample names, variant keys and file paths
// are left alone.
//
// # Usage
//
//	logger := log.NewRedactingLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("report written",
//	    "subject", "Pam03", // Logged as ***REDACTED***
//	    "path", "out/Pam03.html",
//	)
//
//	slog.SetDefault(logger)
//
// NewLogger selects between the redacting logger and a plain text logger,
// which backs the --show-identifiers flag of the CLI.
package log
