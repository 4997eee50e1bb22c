package graphics

// Effect holds compiled shader bytecode uploaded to the device.
type Effect struct {
	resource

	Bytecode   []byte
	Generation uint32
}

func (e *Effect) Set(dev Device, bytecode []byte) error {
	if err := e.upload(dev, ResourceEffect, [][]byte{bytecode}); err != nil {
		return err
	}
	e.Bytecode = bytecode
	e.Generation++
	return nil
}
