/*
Package quadfilter runs an image filter three ways and shows the results side by side.

The same prebuilt pipeline (see package filter) is dispatched:

  - on the CPU, reading and writing host memory;
  - on the GPU, with host memory staged to device textures and copied back;
  - on the GPU, between two textures that already live on the device.

Each run returns a short timing report. The original image and the three
results are drawn in the quadrants of a window (or of a single image in
headless mode), each captioned with its report.

A minimal example:

	rt := device.NewRuntime(soft.Provider())
	defer rt.ContextLost()

	p := filter.NewBlur()
	dst := make([]uint8, len(img.Pix))
	report, err := quadfilter.RunGPUFilterHostToHost(rt, p, img.Pix, dst, w, h)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report)
*/
package quadfilter
