package api

func SetupRoutes(d *Dispatcher, resolver LocationResolver, sink ReadingSink) {
	handlers := NewHandlers(resolver, sink)

	// Landing page with a test form
	d.Handle("GET", "/", handlers.GetIndex)

	// Server geolocation
	d.Handle("GET", "/location", handlers.GetLocation)

	// Sensor readings
	d.Handle("POST", "/", handlers.PostReading)
}
