package seeds

func SeedAll() error {
	if err := SeedEvents(); err != nil {
		return err
	}
	if err := SeedRequests(); err != nil {
		return err
	}
	return nil
}
