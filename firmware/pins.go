//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// Sampling configuration
	SAMPLE_INTERVAL = time.Millisecond       // ADC read interval, same for both channels
	SEND_INTERVAL   = 100 * time.Millisecond // One averaged record per interval

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits

	// ADC pins
	PIN_CHANNEL1 = machine.A1
	PIN_CHANNEL2 = machine.A10

	// "v1=3300,v2=3300\r\n" is at most 17 bytes, 10 records/s need 1700 baud.
	// 9600 is the plotter default.
	UART_BAUD_RATE = 9600
)
