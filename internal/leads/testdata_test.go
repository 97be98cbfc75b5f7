package leads

import "time"

const sampleSubject = "Request for information - Villa - Buy - Al Badaia 245m² 2,634,000"

const sampleMarkup = `<html><body><table>
<tr><td style="background-color: rgb(8, 81, 67); color: #ffffff">Request for information</td></tr>
<tr><td><a href="https://www.green-acres.ae/en/properties/villa/sharjah/ga4521.htm">Villa in Al Badaia, Sharjah</a></td></tr>
<tr><td>Mr or Mrs Jane Smith (United Kingdom) is interested in your property.</td></tr>
<tr><td>Ref: GA-4521</td></tr>
<tr><td>Sharjah : Al Badaia - Hab surface: 245 m² - Land: 390 m² - 4 room - 4 bedroom</td></tr>
<tr><td>2,634,000&nbsp;AED</td></tr>
<tr><td><a href="https://www.green-acres.ae/en/properties/villa/sharjah/ga4521.htm">See more details</a></td></tr>
<tr><td>Message</td><td>I would like to visit next week.</td></tr>
<tr><td>Contact name</td><td>Jane Smith</td></tr>
<tr><td>Phone number</td><td><a href="tel:+971501234567">+971 50 123 4567</a></td></tr>
<tr><td>E-mail</td><td><a href="mailto:jane.smith@example.com">jane.smith@example.com</a></td></tr>
<tr><td>To see the profile analysis of this contact, <a href="https://www.green-acres.ae/en/profile/xyz">click here</a></td></tr>
</table></body></html>`

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
