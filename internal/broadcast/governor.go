package broadcast

// limitReached reports whether no more recipients should be pulled.
func limitReached(targets, ceiling int) bool {
	return ceiling > 0 && targets >= ceiling
}

// progressDue reports whether a progress marker is due at targets.
func progressDue(targets, interval int) bool {
	return interval > 0 && targets > 0 && targets%interval == 0
}
