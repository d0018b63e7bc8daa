//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcChannel1 machine.ADC
	adcChannel2 machine.ADC
	uart        = machine.UART0

	// Running sums for averaging
	sum1  uint32
	sum2  uint32
	count int

	lastRead time.Time
	lastSend time.Time
)

func main() {
	PIN_CHANNEL1.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_CHANNEL2.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcChannel1 = machine.ADC{Pin: PIN_CHANNEL1}
	adcChannel2 = machine.ADC{Pin: PIN_CHANNEL2}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	adcChannel1.Configure(adcConfig)
	adcChannel2.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastRead = time.Now()
	lastSend = lastRead

	for {
		now := time.Now()

		// Both channels are read together so each record is a matched pair
		if now.Sub(lastRead) >= SAMPLE_INTERVAL {
			sum1 += uint32(adcChannel1.Get())
			sum2 += uint32(adcChannel2.Get())
			count++
			lastRead = now
		}

		if now.Sub(lastSend) >= SEND_INTERVAL && count > 0 {
			sendRecord(toMillivolts(sum1/uint32(count)), toMillivolts(sum2/uint32(count)))
			sum1, sum2, count = 0, 0, 0
			lastSend = now
		}

		time.Sleep(100 * time.Microsecond)
	}
}

// toMillivolts converts a left-aligned 16 bit ADC reading to millivolts.
func toMillivolts(raw uint32) uint32 {
	return raw * ADC_REFERENCE_MV / 0xFFFF
}

// sendRecord writes one "v1=<a>,v2=<b>" line.
func sendRecord(a, b uint32) {
	uart.Write([]byte("v1="))
	writeUint(a)
	uart.Write([]byte(",v2="))
	writeUint(b)
	uart.Write([]byte("\r\n"))
}

func writeUint(v uint32) {
	var buf [10]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	uart.Write(buf[i:])
}
